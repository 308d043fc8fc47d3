// Package memory provides an in-memory ledger for local development and
// tests. Rows live only as long as the process.
package memory

import (
	"context"
	"fmt"
	"sync"

	"spendwatch/internal/core"
)

type Store struct {
	mu    sync.Mutex
	items []core.Purchase
}

func New() *Store {
	return &Store{}
}

// Append stores the purchase and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, p core.Purchase) (string, error) {
	if err := p.Amount.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, p)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []core.Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Purchase(nil), s.items...)
}
