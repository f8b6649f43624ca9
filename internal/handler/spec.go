package handler

import (
	"log/slog"
	"net/http"

	"specforge/internal/domain/services"
	"specforge/internal/httputil"
)

// SpecHandler handles spec document HTTP requests
type SpecHandler struct {
	coordinator services.Coordinator
	logger      *slog.Logger
}

// NewSpecHandler creates a new spec handler
func NewSpecHandler(coordinator services.Coordinator, logger *slog.Logger) *SpecHandler {
	return &SpecHandler{
		coordinator: coordinator,
		logger:      logger,
	}
}

// GetSpec returns the current head of a document type
// GET /api/projects/{id}/specs/{type}
func (h *SpecHandler) GetSpec(w http.ResponseWriter, r *http.Request) {
	file, err := h.coordinator.GetLatestSpec(r.Context(), r.PathValue("id"), r.PathValue("type"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, file)
}

// UpdateSpec stores new content as the next version
// PUT /api/projects/{id}/specs/{type}
// Returns 409 if base_version is stale or another edit won the race
func (h *SpecHandler) UpdateSpec(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateSpecRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}
	req.ProjectID = r.PathValue("id")
	req.FileType = r.PathValue("type")
	req.Actor = httputil.GetUserID(r)

	file, err := h.coordinator.UpdateSpec(r.Context(), &req)
	respondCommitted(w, file, err)
}

// ListVersions returns the snapshot history, newest first
// GET /api/projects/{id}/specs/{type}/versions
func (h *SpecHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := h.coordinator.ListSpecVersions(r.Context(), r.PathValue("id"), r.PathValue("type"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, versions)
}

// Rollback restores an earlier snapshot as a new version
// POST /api/projects/{id}/specs/{type}/rollback
func (h *SpecHandler) Rollback(w http.ResponseWriter, r *http.Request) {
	var req services.RollbackSpecRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}
	req.ProjectID = r.PathValue("id")
	req.FileType = r.PathValue("type")
	req.Actor = httputil.GetUserID(r)

	file, err := h.coordinator.RollbackSpec(r.Context(), &req)
	respondCommitted(w, file, err)
}

// Reproject writes the current head into the workspace again
// POST /api/projects/{id}/specs/{type}/projection
func (h *SpecHandler) Reproject(w http.ResponseWriter, r *http.Request) {
	file, err := h.coordinator.Reproject(r.Context(), r.PathValue("id"), r.PathValue("type"))
	respondCommitted(w, file, err)
}
