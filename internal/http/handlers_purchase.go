package http

import (
	"errors"
	"log/slog"
	"net/http"

	"spendwatch/internal/core"
	"spendwatch/internal/services"
	"spendwatch/internal/storage"
)

type purchaseListResponse struct {
	Purchases []core.Purchase `json:"purchases"`
}

// handlePurchases lists history or submits a detected candidate.
// GET|POST /api/purchases
func (s *Server) handlePurchases(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		purchases, err := s.service.Purchases(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "List purchases failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load purchases")
			return
		}
		writeJSON(w, http.StatusOK, purchaseListResponse{Purchases: purchases})

	case http.MethodPost:
		var candidate core.PurchaseCandidate
		if err := decodeJSON(w, r, &candidate); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, err := s.service.Submit(r.Context(), candidate)
		if err != nil {
			if errors.Is(err, core.ErrInvalidAmount) {
				writeError(w, http.StatusUnprocessableEntity, "invalid amount")
				return
			}
			slog.ErrorContext(r.Context(), "Purchase submission failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save purchase")
			return
		}

		if result.Saved {
			s.invalidateDerived()
		}
		writeJSON(w, http.StatusOK, result)

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

// handleManualPurchase records a user-entered purchase, bypassing the
// tracking gate and duplicate suppression.
// POST /api/purchases/manual
func (s *Server) handleManualPurchase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var candidate core.PurchaseCandidate
	if err := decodeJSON(w, r, &candidate); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	purchase, err := s.service.AddManual(r.Context(), candidate)
	if err != nil {
		if errors.Is(err, core.ErrInvalidAmount) {
			writeError(w, http.StatusUnprocessableEntity, "invalid amount")
			return
		}
		slog.ErrorContext(r.Context(), "Manual purchase failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save purchase")
		return
	}

	s.invalidateDerived()
	writeJSON(w, http.StatusCreated, services.SubmitResult{Saved: true, Purchase: purchase})
}

// handlePurchaseByID deletes a single record.
// DELETE /api/purchases/{id}
func (s *Server) handlePurchaseByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, "DELETE")
		return
	}

	id := purchaseID(r.URL.Path)
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing purchase id")
		return
	}

	if err := s.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "purchase not found")
			return
		}
		slog.ErrorContext(r.Context(), "Delete purchase failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete purchase")
		return
	}

	s.invalidateDerived()
	w.WriteHeader(http.StatusNoContent)
}
