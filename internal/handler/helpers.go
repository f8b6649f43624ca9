package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"specforge/internal/domain"
	"specforge/internal/domain/models/spec"
	"specforge/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var conflictErr *domain.ConflictError

	switch {
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]any{
			"resource_type":    conflictErr.ResourceType,
			"expected_version": conflictErr.Expected,
			"current_version":  conflictErr.Current,
		})
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidPath),
		errors.Is(err, domain.ErrNotADirectory),
		errors.Is(err, domain.ErrIsADirectory):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	default:
		slog.Error("unhandled error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// respondCommitted answers a spec mutation that committed. A failed
// projection is a 500 that still carries the committed file, so the client
// knows the edit landed and can call the projection endpoint to repair.
func respondCommitted(w http.ResponseWriter, file *spec.SpecFile, err error) {
	if file == nil {
		handleError(w, err)
		return
	}
	if err == nil {
		httputil.RespondJSON(w, http.StatusOK, file)
		return
	}

	var projErr *domain.ProjectionError
	if errors.As(err, &projErr) {
		httputil.RespondErrorWithExtras(w, http.StatusInternalServerError, projErr.Error(), map[string]any{
			"spec_file":       file,
			"projection_path": projErr.Path,
		})
		return
	}
	handleError(w, err)
}

// HealthCheck reports liveness
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
