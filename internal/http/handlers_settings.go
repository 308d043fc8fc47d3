package http

import (
	"log/slog"
	"net/http"
	"strings"

	"spendwatch/internal/core"
	"spendwatch/internal/services"
)

// handleSettings reads or replaces the settings record. Writes are
// clamped, never rejected, and the response carries the stored values.
// GET|PUT /api/settings
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := s.service.Settings(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Load settings failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load settings")
			return
		}
		writeJSON(w, http.StatusOK, settings)

	case http.MethodPut:
		var settings core.Settings
		if err := decodeJSON(w, r, &settings); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := s.service.SaveSettings(r.Context(), settings); err != nil {
			slog.ErrorContext(r.Context(), "Save settings failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save settings")
			return
		}

		s.invalidateDerived()

		stored, err := s.service.Settings(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Reload settings failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load settings")
			return
		}
		writeJSON(w, http.StatusOK, stored)

	default:
		methodNotAllowed(w, "GET, PUT")
	}
}

type categoryListResponse struct {
	Categories []string `json:"categories"`
}

type addCategoryRequest struct {
	Name string `json:"name"`
}

// handleCategories lists or appends categories.
// GET|POST /api/categories
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		categories, err := s.service.Categories(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "List categories failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load categories")
			return
		}
		writeJSON(w, http.StatusOK, categoryListResponse{Categories: categories})

	case http.MethodPost:
		var req addCategoryRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			writeError(w, http.StatusUnprocessableEntity, "category name is empty")
			return
		}

		if err := s.service.AddCategory(r.Context(), req.Name); err != nil {
			slog.ErrorContext(r.Context(), "Add category failed", "error", err, "name", req.Name)
			writeError(w, http.StatusInternalServerError, "failed to add category")
			return
		}

		categories, err := s.service.Categories(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "List categories failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load categories")
			return
		}
		writeJSON(w, http.StatusCreated, categoryListResponse{Categories: categories})

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

// handleExport snapshots history and settings as a backup document.
// GET /api/export
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	data, err := s.service.Export(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export data")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="spendwatch-export.json"`)
	writeJSON(w, http.StatusOK, data)
}

type importResponse struct {
	Imported int `json:"imported"`
}

// handleImport replaces history and settings from a backup document. One
// bad record rejects the whole file.
// POST /api/import
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var data services.ExportData
	if err := decodeJSON(w, r, &data); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	count, err := s.service.Import(r.Context(), data)
	if err != nil {
		slog.WarnContext(r.Context(), "Import rejected", "error", err)
		writeError(w, http.StatusUnprocessableEntity, "invalid backup document")
		return
	}

	s.invalidateDerived()
	writeJSON(w, http.StatusOK, importResponse{Imported: count})
}
