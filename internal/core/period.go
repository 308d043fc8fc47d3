package core

import (
	"sort"
	"time"
)

type (
	// Spending is the aggregate for a single period window.
	Spending struct {
		Total     Money      `json:"total"`
		Count     int        `json:"count"`
		Purchases []Purchase `json:"purchases"`
	}

	// CategorySpending is a per-category slice of a period window.
	CategorySpending struct {
		Category string `json:"category"`
		Total    Money  `json:"total"`
		Count    int    `json:"count"`
	}

	// WeekSummary is one Sunday-to-Saturday window in a weekly comparison.
	WeekSummary struct {
		Label string `json:"label"`
		Total Money  `json:"total"`
		Count int    `json:"count"`
	}
)

// PeriodStart returns the inclusive lower bound of a period window anchored
// to now, in now's location. Weeks start on Sunday.
func PeriodStart(period Period, now time.Time) time.Time {
	switch period {
	case Weekly:
		start := now.AddDate(0, 0, -int(now.Weekday()))
		return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, now.Location())
	case Yearly:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default: // Monthly, and the fallback for anything unrecognized
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	}
}

// SpendingForPeriod filters history to records dated inside the period
// window ending at now and totals them. History order does not matter;
// matched purchases keep their input order.
func SpendingForPeriod(history []Purchase, period Period, now time.Time) Spending {
	start := PeriodStart(period, now)
	sp := Spending{Purchases: []Purchase{}}
	for _, p := range history {
		if p.When().Before(start) {
			continue
		}
		sp.Total.Cents += p.Amount.Cents
		sp.Count++
		sp.Purchases = append(sp.Purchases, p)
	}
	return sp
}

// SpendingByCategory groups a period window by category, largest total
// first. Purchases with an empty category land in the "Other" bucket.
func SpendingByCategory(history []Purchase, period Period, now time.Time) []CategorySpending {
	byCategory := make(map[string]CategorySpending)
	for _, p := range SpendingForPeriod(history, period, now).Purchases {
		cat := p.Category
		if cat == "" {
			cat = "Other"
		}
		entry := byCategory[cat]
		entry.Category = cat
		entry.Total.Cents += p.Amount.Cents
		entry.Count++
		byCategory[cat] = entry
	}

	out := make([]CategorySpending, 0, len(byCategory))
	for _, entry := range byCategory {
		out = append(out, entry)
	}
	// Ties break on name so output order is deterministic.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total.Cents != out[j].Total.Cents {
			return out[i].Total.Cents > out[j].Total.Cents
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// WeeklyComparison partitions the trailing weekCount seven-day windows
// ending at now. Window i ends at now minus 7*i days at 23:59:59.999 and
// starts six days earlier at 00:00:00. The result is ordered oldest window
// first. Deterministic for a fixed now and history.
func WeeklyComparison(history []Purchase, weekCount int, now time.Time) []WeekSummary {
	if weekCount <= 0 {
		weekCount = 4
	}

	weeks := make([]WeekSummary, 0, weekCount)
	for i := 0; i < weekCount; i++ {
		end := now.AddDate(0, 0, -7*i)
		end = time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 999_000_000, now.Location())
		start := end.AddDate(0, 0, -6)
		start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, now.Location())

		var week WeekSummary
		week.Label = start.Format("Jan 2") + " - " + end.Format("Jan 2")
		for _, p := range history {
			when := p.When()
			if when.Before(start) || when.After(end) {
				continue
			}
			week.Total.Cents += p.Amount.Cents
			week.Count++
		}
		weeks = append(weeks, week)
	}

	// Computed most-recent first; callers want oldest first.
	for i, j := 0, len(weeks)-1; i < j; i, j = i+1, j-1 {
		weeks[i], weeks[j] = weeks[j], weeks[i]
	}
	return weeks
}
