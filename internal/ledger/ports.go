// Package ledger defines the outbound port for mirroring purchases into an
// external ledger, and houses its adapters.
package ledger

import (
	"context"

	"spendwatch/internal/core"
)

// PurchaseWriter appends a purchase row to the ledger. Implementations must
// be safe for concurrent use; the worker retries on error via requeue, so
// appends should be idempotent per purchase id where the backend allows it.
type PurchaseWriter interface {
	Append(ctx context.Context, p core.Purchase) (rowRef string, err error)
}
