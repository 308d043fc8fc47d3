package memory

import (
	"context"
	"testing"

	"spendwatch/internal/core"
)

func TestAppendAndRows(t *testing.T) {
	s := New()
	ctx := context.Background()

	p := core.Purchase{ID: "a1", Amount: core.Money{Cents: 1999}, Platform: "Amazon"}
	ref, err := s.Append(ctx, p)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q, want mem:1", ref)
	}

	rows := s.Rows()
	if len(rows) != 1 || rows[0].ID != "a1" {
		t.Errorf("rows = %+v", rows)
	}

	// Mutating the copy must not touch the store.
	rows[0].ID = "changed"
	if s.Rows()[0].ID != "a1" {
		t.Error("Rows should return a copy")
	}
}

func TestAppendRejectsInvalidAmount(t *testing.T) {
	s := New()
	if _, err := s.Append(context.Background(), core.Purchase{ID: "a1"}); err == nil {
		t.Error("zero amount should be rejected")
	}
	if len(s.Rows()) != 0 {
		t.Error("nothing should be stored")
	}
}
