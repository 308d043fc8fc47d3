package core

import (
	"strings"
	"testing"
	"time"
)

func TestCandidateSanitize(t *testing.T) {
	t.Run("rejects bad amounts", func(t *testing.T) {
		for _, cents := range []int64{0, -100, MaxAmountCents + 1} {
			c := PurchaseCandidate{Amount: Money{Cents: cents}}
			if err := c.Sanitize(); err == nil {
				t.Errorf("amount %d cents should be rejected", cents)
			}
		}
	})

	t.Run("fills fallbacks", func(t *testing.T) {
		c := PurchaseCandidate{Amount: Money{Cents: 100}, Description: "   "}
		if err := c.Sanitize(); err != nil {
			t.Fatalf("sanitize: %v", err)
		}
		if c.Description != FallbackDescription {
			t.Errorf("description = %q, want fallback", c.Description)
		}
		if c.Category != "Other" || c.Platform != "Manual" || c.Currency != "$" {
			t.Errorf("fallbacks wrong: %+v", c)
		}
	})

	t.Run("caps lengths", func(t *testing.T) {
		c := PurchaseCandidate{
			Amount:      Money{Cents: 100},
			Description: strings.Repeat("x", 500),
			URL:         strings.Repeat("u", 1000),
			PageTitle:   strings.Repeat("t", 1000),
		}
		if err := c.Sanitize(); err != nil {
			t.Fatalf("sanitize: %v", err)
		}
		if len(c.Description) != MaxDescriptionLen {
			t.Errorf("description length = %d, want %d", len(c.Description), MaxDescriptionLen)
		}
		if len(c.URL) != MaxURLLen || len(c.PageTitle) != MaxPageTitleLen {
			t.Errorf("url/title not capped: %d / %d", len(c.URL), len(c.PageTitle))
		}
	})

	t.Run("truncation keeps valid utf8", func(t *testing.T) {
		c := PurchaseCandidate{
			Amount:      Money{Cents: 100},
			Description: strings.Repeat("é", 150), // 300 bytes
		}
		if err := c.Sanitize(); err != nil {
			t.Fatalf("sanitize: %v", err)
		}
		if !strings.HasSuffix(c.Description, "é") {
			t.Errorf("truncation split a rune: %q", c.Description[len(c.Description)-4:])
		}
	})
}

func TestNewPurchase(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	c := PurchaseCandidate{
		Amount:      Money{Cents: 4999},
		Currency:    "$",
		Platform:    "Amazon",
		Description: "USB cable",
		Category:    "Electronics",
	}

	p, err := NewPurchase(c, now)
	if err != nil {
		t.Fatalf("NewPurchase: %v", err)
	}
	if p.ID == "" {
		t.Error("id must be generated")
	}
	if p.Timestamp != now.UnixMilli() {
		t.Errorf("timestamp = %d, want %d", p.Timestamp, now.UnixMilli())
	}
	if !p.When().Equal(now) {
		t.Errorf("When() = %v, want %v", p.When(), now)
	}

	if _, err := NewPurchase(PurchaseCandidate{}, now); err == nil {
		t.Error("zero-amount candidate must be rejected")
	}
}

func TestNewIDUniqueEnough(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID(now)
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestPurchaseWhenFallsBackToTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	p := Purchase{Date: "not-a-date", Timestamp: ts.UnixMilli()}
	if !p.When().Equal(ts) {
		t.Errorf("When() = %v, want timestamp fallback %v", p.When(), ts)
	}
}

func TestSettingsSanitize(t *testing.T) {
	cases := []struct {
		name string
		in   Settings
		want Settings
	}{
		{
			"in-range values pass through",
			Settings{BudgetAmount: Money{Cents: 50000}, BudgetPeriod: Weekly, AlertThreshold: 75, Currency: "EUR", TrackingEnabled: true},
			Settings{BudgetAmount: Money{Cents: 50000}, BudgetPeriod: Weekly, AlertThreshold: 75, Currency: "EUR", TrackingEnabled: true},
		},
		{
			"negative budget clamps to zero",
			Settings{BudgetAmount: Money{Cents: -1}, BudgetPeriod: Monthly, AlertThreshold: 80, Currency: "USD"},
			Settings{BudgetAmount: Money{Cents: 0}, BudgetPeriod: Monthly, AlertThreshold: 80, Currency: "USD"},
		},
		{
			"oversized budget clamps to cap",
			Settings{BudgetAmount: Money{Cents: MaxBudgetCents + 1}, BudgetPeriod: Monthly, AlertThreshold: 80, Currency: "USD"},
			Settings{BudgetAmount: Money{Cents: MaxBudgetCents}, BudgetPeriod: Monthly, AlertThreshold: 80, Currency: "USD"},
		},
		{
			"bad period and threshold repaired",
			Settings{BudgetPeriod: Period("hourly"), AlertThreshold: 10, Currency: "USD"},
			Settings{BudgetPeriod: Monthly, AlertThreshold: MinAlertThreshold, Currency: "USD"},
		},
		{
			"threshold clamps at 100",
			Settings{BudgetPeriod: Monthly, AlertThreshold: 250, Currency: "USD"},
			Settings{BudgetPeriod: Monthly, AlertThreshold: MaxAlertThreshold, Currency: "USD"},
		},
		{
			"currency capped to three chars and defaulted",
			Settings{BudgetPeriod: Monthly, AlertThreshold: 80, Currency: "DOLLARS"},
			Settings{BudgetPeriod: Monthly, AlertThreshold: 80, Currency: "DOL"},
		},
		{
			"empty currency defaults",
			Settings{BudgetPeriod: Monthly, AlertThreshold: 80},
			Settings{BudgetPeriod: Monthly, AlertThreshold: 80, Currency: "USD"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Sanitize(); got != tc.want {
				t.Errorf("Sanitize() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestDefaultSettingsAreSane(t *testing.T) {
	s := DefaultSettings()
	if s != s.Sanitize() {
		t.Errorf("defaults should survive sanitization unchanged: %+v vs %+v", s, s.Sanitize())
	}
	if len(DefaultCategories()) != 10 {
		t.Errorf("expected 10 default categories, got %d", len(DefaultCategories()))
	}
}
