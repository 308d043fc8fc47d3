package http

import (
	"log/slog"
	"net/http"

	"spendwatch/internal/core"
)

// handleSpending aggregates the current period window.
// GET /api/spending?period=weekly|monthly|yearly
func (s *Server) handleSpending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	period := parsePeriod(r, core.Monthly)

	if cached, found := s.spendingCache.Get(string(period)); found {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	spending, err := s.service.Spending(r.Context(), period)
	if err != nil {
		slog.ErrorContext(r.Context(), "Spending query failed", "error", err, "period", period)
		writeError(w, http.StatusInternalServerError, "failed to compute spending")
		return
	}

	s.spendingCache.Set(string(period), spending)
	writeJSON(w, http.StatusOK, spending)
}

// handleSpendingByCategory breaks the current period down per category.
// GET /api/spending/categories?period=
func (s *Server) handleSpendingByCategory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	period := parsePeriod(r, core.Monthly)
	byCategory, err := s.service.SpendingByCategory(r.Context(), period)
	if err != nil {
		slog.ErrorContext(r.Context(), "Category spending query failed", "error", err, "period", period)
		writeError(w, http.StatusInternalServerError, "failed to compute category spending")
		return
	}

	writeJSON(w, http.StatusOK, map[string][]core.CategorySpending{"categories": byCategory})
}

// handleWeeklyComparison returns trailing per-week totals, oldest first.
// GET /api/spending/weekly?weeks=
func (s *Server) handleWeeklyComparison(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	weeks := parseWeeks(r, 4)
	summaries, err := s.service.WeeklyComparison(r.Context(), weeks)
	if err != nil {
		slog.ErrorContext(r.Context(), "Weekly comparison failed", "error", err, "weeks", weeks)
		writeError(w, http.StatusInternalServerError, "failed to compute weekly comparison")
		return
	}

	writeJSON(w, http.StatusOK, map[string][]core.WeekSummary{"weeks": summaries})
}

// handleBudget evaluates the configured budget against current spending.
// Cached briefly; every write purges the cache.
// GET /api/budget
func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	if cached, found := s.budgetCache.Get("status"); found {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	status, err := s.service.BudgetStatus(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Budget status failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute budget status")
		return
	}

	s.budgetCache.Set("status", status)
	writeJSON(w, http.StatusOK, status)
}
