package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"specforge/internal/config"
	"specforge/internal/domain"
	"specforge/internal/domain/models/workspace"
	"specforge/internal/domain/services"
	"specforge/internal/httputil"
)

// WorkspaceHandler handles workspace file HTTP requests
type WorkspaceHandler struct {
	coordinator services.Coordinator
	logger      *slog.Logger
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(coordinator services.Coordinator, logger *slog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		coordinator: coordinator,
		logger:      logger,
	}
}

// WriteFileRequest overwrites or creates one file
type WriteFileRequest struct {
	FilePath string `json:"file_path"`
	Content  string `json:"content"`
}

// CreatePathRequest creates a file or directory that must not exist yet
type CreatePathRequest struct {
	Path    string         `json:"path"`
	Type    workspace.Kind `json:"type"`
	Content string         `json:"content,omitempty"`
}

// BatchWriteRequest applies a generation result; files keep request order
type BatchWriteRequest struct {
	Files *orderedmap.OrderedMap[string, string] `json:"files"`
}

// GetTree returns the whole tree, creating an empty workspace if needed
// GET /api/projects/{id}/files
func (h *WorkspaceHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	ws, err := h.coordinator.GetWorkspace(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, ws)
}

// ReadFile returns one file's content
// GET /api/projects/{id}/files/read?path=src/app.js
func (h *WorkspaceHandler) ReadFile(w http.ResponseWriter, r *http.Request) {
	path, err := httputil.RequireQuery(r, "path")
	if err != nil {
		handleError(w, err)
		return
	}

	content, err := h.coordinator.ReadFile(r.Context(), r.PathValue("id"), path)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{
		"file_path": path,
		"content":   content,
	})
}

// WriteFile creates or overwrites a file, creating parent directories
// PUT /api/projects/{id}/files
func (h *WorkspaceHandler) WriteFile(w http.ResponseWriter, r *http.Request) {
	var req WriteFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}

	ws, err := h.coordinator.WriteFile(r.Context(), r.PathValue("id"), req.FilePath, req.Content)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"message":   fmt.Sprintf("File %s updated successfully", req.FilePath),
		"file_path": req.FilePath,
		"revision":  ws.Revision,
	})
}

// CreatePath creates a file or directory
// POST /api/projects/{id}/files
// Returns 409 if the path is taken
func (h *WorkspaceHandler) CreatePath(w http.ResponseWriter, r *http.Request) {
	var req CreatePathRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}
	if !req.Type.Valid() {
		handleError(w, fmt.Errorf("%w: type must be %q or %q", domain.ErrValidation, workspace.KindFile, workspace.KindDirectory))
		return
	}

	ws, err := h.coordinator.CreatePath(r.Context(), r.PathValue("id"), req.Path, req.Type, req.Content)
	if err != nil {
		handleError(w, err)
		return
	}
	label := "File"
	if req.Type == workspace.KindDirectory {
		label = "Directory"
	}
	httputil.RespondJSON(w, http.StatusCreated, map[string]any{
		"message":  label + " created successfully",
		"path":     req.Path,
		"revision": ws.Revision,
	})
}

// DeletePath removes a file or a whole directory
// DELETE /api/projects/{id}/files?path=src
func (h *WorkspaceHandler) DeletePath(w http.ResponseWriter, r *http.Request) {
	path, err := httputil.RequireQuery(r, "path")
	if err != nil {
		handleError(w, err)
		return
	}

	ws, err := h.coordinator.DeletePath(r.Context(), r.PathValue("id"), path)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"message":  fmt.Sprintf("Deleted %s successfully", path),
		"path":     path,
		"revision": ws.Revision,
	})
}

// BatchWrite applies an AI generation result as one mutation
// POST /api/projects/{id}/files/batch
func (h *WorkspaceHandler) BatchWrite(w http.ResponseWriter, r *http.Request) {
	var req BatchWriteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}
	if req.Files == nil || req.Files.Len() == 0 {
		handleError(w, fmt.Errorf("%w: files is required", domain.ErrValidation))
		return
	}
	if req.Files.Len() > config.MaxBatchFiles {
		handleError(w, fmt.Errorf("%w: at most %d files per batch", domain.ErrValidation, config.MaxBatchFiles))
		return
	}

	files := make([]services.FileWrite, 0, req.Files.Len())
	for pair := req.Files.Oldest(); pair != nil; pair = pair.Next() {
		files = append(files, services.FileWrite{Path: pair.Key, Content: pair.Value})
	}

	ws, err := h.coordinator.ApplyGenerated(r.Context(), r.PathValue("id"), files)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"files":    len(files),
		"revision": ws.Revision,
	})
}
