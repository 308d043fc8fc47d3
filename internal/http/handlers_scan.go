package http

import (
	"log/slog"
	"net/http"
	"strings"

	"spendwatch/internal/extract"
	"spendwatch/internal/page"
	"spendwatch/internal/platform"
	"spendwatch/internal/services"
)

// Scan rejection reasons for pages that never reach the submission
// pipeline.
const (
	reasonUnsupportedPlatform = "unsupported_platform"
	reasonNotOrderPage        = "not_order_page"
	reasonNotConfirmed        = "not_confirmed"
	reasonNoTotal             = "no_total"
)

type platformResponse struct {
	Supported bool           `json:"supported"`
	OrderPage bool           `json:"orderPage"`
	Platform  *platform.Info `json:"platform,omitempty"`
}

// handlePlatform classifies a URL without any page content.
// GET /api/platform?url=
func (s *Server) handlePlatform(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	rawURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if rawURL == "" {
		writeError(w, http.StatusBadRequest, "missing url parameter")
		return
	}

	def := platform.Detect(rawURL)
	if def == nil {
		writeJSON(w, http.StatusOK, platformResponse{})
		return
	}

	info := def.Wire()
	writeJSON(w, http.StatusOK, platformResponse{
		Supported: true,
		OrderPage: platform.IsOrderPage(rawURL, def),
		Platform:  &info,
	})
}

type scanRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	HTML  string `json:"html"`
}

type scanResponse struct {
	Platform string                `json:"platform,omitempty"`
	Result   services.SubmitResult `json:"result"`
}

// handleScan runs captured page content through the full detection
// pipeline: classify, confirm, extract, submit.
// POST /api/scan
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req scanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "missing url")
		return
	}

	def := platform.Detect(req.URL)
	if def == nil {
		writeJSON(w, http.StatusOK, scanResponse{
			Result: services.SubmitResult{Reason: reasonUnsupportedPlatform},
		})
		return
	}

	resp := scanResponse{Platform: def.Name}

	if !platform.IsOrderPage(req.URL, def) {
		resp.Result = services.SubmitResult{Reason: reasonNotOrderPage}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	doc, err := page.Parse(req.HTML, req.URL, req.Title)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unparsable page content")
		return
	}

	if !platform.IsOrderConfirmed(doc, def) {
		resp.Result = services.SubmitResult{Reason: reasonNotConfirmed}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	candidate, ok := extract.Purchase(doc, def)
	if !ok {
		resp.Result = services.SubmitResult{Reason: reasonNoTotal}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	result, err := s.service.Submit(r.Context(), candidate)
	if err != nil {
		slog.ErrorContext(r.Context(), "Scan submission failed",
			"error", err,
			"platform", def.Name,
			"url", req.URL)
		writeError(w, http.StatusInternalServerError, "failed to save purchase")
		return
	}

	if result.Saved {
		s.invalidateDerived()
	}

	resp.Result = result
	writeJSON(w, http.StatusOK, resp)
}
