package core

import "math"

// EvaluateBudget derives a BudgetStatus from clamped settings and an already
// computed period spending. Percentage is an integer and is deliberately not
// clamped at 100; presentation layers clamp for display if they want to.
func EvaluateBudget(settings Settings, spending Spending) BudgetStatus {
	budget := settings.BudgetAmount.Cents
	spent := spending.Total.Cents

	remaining := budget - spent
	if remaining < 0 {
		remaining = 0
	}

	percentage := 0
	if budget > 0 {
		percentage = int(math.Round(float64(spent) / float64(budget) * 100))
	}

	return BudgetStatus{
		Budget:       Money{Cents: budget},
		Spent:        Money{Cents: spent},
		Remaining:    Money{Cents: remaining},
		Percentage:   percentage,
		Period:       settings.BudgetPeriod,
		Count:        spending.Count,
		IsOverBudget: spent > budget,
		IsNearLimit:  percentage >= settings.AlertThreshold,
	}
}
