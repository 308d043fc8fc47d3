package core

import (
	"testing"
	"time"
)

func TestIsDuplicate(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	candidate := PurchaseCandidate{
		Amount:   Money{Cents: 4999},
		Platform: "Amazon",
	}
	record := func(offset time.Duration, cents int64, platform string) Purchase {
		return Purchase{
			Amount:    Money{Cents: cents},
			Platform:  platform,
			Timestamp: now.Add(offset).UnixMilli(),
		}
	}

	cases := []struct {
		name    string
		history []Purchase
		want    bool
	}{
		{"empty history", nil, false},
		{"same amount and platform inside window", []Purchase{record(-2*time.Minute, 4999, "Amazon")}, true},
		{"just inside window", []Purchase{record(-DedupWindow + time.Millisecond, 4999, "Amazon")}, true},
		{"exactly at window boundary", []Purchase{record(-DedupWindow, 4999, "Amazon")}, false},
		{"outside window", []Purchase{record(-10*time.Minute, 4999, "Amazon")}, false},
		{"different amount", []Purchase{record(-time.Minute, 5000, "Amazon")}, false},
		{"different platform", []Purchase{record(-time.Minute, 4999, "eBay")}, false},
		{"future record inside window", []Purchase{record(time.Minute, 4999, "Amazon")}, true},
		{"one match among many", []Purchase{
			record(-time.Hour, 4999, "Amazon"),
			record(-time.Minute, 100, "eBay"),
			record(-30*time.Second, 4999, "Amazon"),
		}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsDuplicate(candidate, tc.history, now); got != tc.want {
				t.Errorf("IsDuplicate = %v, want %v", got, tc.want)
			}
		})
	}
}
