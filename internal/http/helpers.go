package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"spendwatch/internal/core"
)

// maxBodyBytes bounds request bodies. Scan requests carry captured page
// HTML, so the cap is generous.
const maxBodyBytes = 4 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// parsePeriod reads the period query parameter, falling back to the
// supplied default for missing or unknown values.
func parsePeriod(r *http.Request, fallback core.Period) core.Period {
	p := core.Period(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("period"))))
	if core.ValidPeriod(p) {
		return p
	}
	return fallback
}

// parseWeeks reads the weeks query parameter, clamped to [1, 52].
func parseWeeks(r *http.Request, fallback int) int {
	v := strings.TrimSpace(r.URL.Query().Get("weeks"))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	if n > 52 {
		return 52
	}
	return n
}
