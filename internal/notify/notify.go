// Package notify shapes and dispatches user-facing alerts. Dispatch is
// fire-and-forget with at most one active notification per id: re-raising an
// id replaces whatever was shown under it before.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"spendwatch/internal/core"
)

// Notification priorities, highest first.
const (
	PriorityUrgent = 2
	PriorityNormal = 1
	PriorityLow    = 0
)

// Well-known notification ids. Budget alerts reuse their id so the user
// never sees a stack of stale warnings.
const (
	IDBudgetExceeded = "budget-exceeded"
	IDBudgetWarning  = "budget-warning"
	IDDailySummary   = "daily-summary"
)

type (
	// Notification is what a sink renders.
	Notification struct {
		Title    string `json:"title"`
		Message  string `json:"message"`
		Priority int    `json:"priority"`
	}

	// Sink delivers a notification. Implementations must tolerate repeated
	// ids; delivery is best-effort.
	Sink interface {
		Notify(ctx context.Context, id string, n Notification) error
	}
)

// BudgetExceeded formats the over-budget alert.
func BudgetExceeded(status core.BudgetStatus, currency string) Notification {
	return Notification{
		Title: "Budget Exceeded!",
		Message: fmt.Sprintf("You've spent %s%.2f of your %s%.2f %s budget.",
			currency, status.Spent.Float(), currency, status.Budget.Float(), status.Period),
		Priority: PriorityUrgent,
	}
}

// BudgetWarning formats the near-limit alert.
func BudgetWarning(status core.BudgetStatus, currency string) Notification {
	return Notification{
		Title: "Budget Warning",
		Message: fmt.Sprintf("You've used %d%% of your %s budget. %s%.2f remaining.",
			status.Percentage, status.Period, currency, status.Remaining.Float()),
		Priority: PriorityNormal,
	}
}

// PurchaseLogged formats the optional per-purchase confirmation.
func PurchaseLogged(p core.Purchase) Notification {
	desc := p.Description
	if len(desc) > 60 {
		cut := 60
		// Back up to a rune boundary so truncation never splits a
		// multi-byte character.
		for cut > 0 && desc[cut]&0xC0 == 0x80 {
			cut--
		}
		desc = desc[:cut]
	}
	return Notification{
		Title:    "Purchase Tracked",
		Message:  fmt.Sprintf("%s - %s%.2f on %s", desc, p.Currency, p.Amount.Float(), p.Platform),
		Priority: PriorityLow,
	}
}

// PurchaseLoggedID returns the per-purchase notification id.
func PurchaseLoggedID(p core.Purchase) string {
	return "purchase-" + p.ID
}

// DailySummary formats the end-of-day rollup.
func DailySummary(count int, total core.Money, currency string) Notification {
	return Notification{
		Title:    "Daily Spending Summary",
		Message:  fmt.Sprintf("Today: %d purchase(s) for %s%.2f", count, currency, total.Float()),
		Priority: PriorityLow,
	}
}

// Dispatcher fans notifications out to a sink while enforcing the
// replace-by-id contract: the previous notification under an id is
// considered withdrawn the moment a new one is raised.
type Dispatcher struct {
	sink Sink

	mu     sync.Mutex
	active map[string]Notification
}

func NewDispatcher(sink Sink) *Dispatcher {
	return &Dispatcher{sink: sink, active: make(map[string]Notification)}
}

// Dispatch raises a notification, replacing any active one with the same
// id. Sink failures are logged, never propagated; notifications are
// fire-and-forget by contract.
func (d *Dispatcher) Dispatch(ctx context.Context, id string, n Notification) {
	d.mu.Lock()
	d.active[id] = n
	d.mu.Unlock()

	if err := d.sink.Notify(ctx, id, n); err != nil {
		slog.ErrorContext(ctx, "Notification delivery failed",
			"error", err,
			"notification_id", id,
			"title", n.Title)
	}
}

// Active returns the currently raised notification for an id, if any.
func (d *Dispatcher) Active(id string) (Notification, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.active[id]
	return n, ok
}

// LogSink renders notifications into the structured log. It is the default
// sink when no desktop or webhook integration is configured.
type LogSink struct{}

func (LogSink) Notify(ctx context.Context, id string, n Notification) error {
	slog.InfoContext(ctx, "NOTIFICATION",
		"notification_id", id,
		"title", n.Title,
		"message", n.Message,
		"priority", n.Priority)
	return nil
}
