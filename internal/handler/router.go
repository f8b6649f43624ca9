package handler

import (
	"net/http"

	"specforge/internal/metrics"
)

// Routes registers every API route on mux. Each route is instrumented under
// its own pattern so request metrics are labelled by route, not raw URL.
func Routes(mux *http.ServeMux, specs *SpecHandler, files *WorkspaceHandler, m *metrics.Metrics) {
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, m.InstrumentHandler(pattern, h))
	}

	// Health check
	handle("GET /health", HealthCheck)

	// Spec document routes
	handle("GET /api/projects/{id}/specs/{type}", specs.GetSpec)
	handle("PUT /api/projects/{id}/specs/{type}", specs.UpdateSpec)
	handle("GET /api/projects/{id}/specs/{type}/versions", specs.ListVersions)
	handle("POST /api/projects/{id}/specs/{type}/rollback", specs.Rollback)
	handle("POST /api/projects/{id}/specs/{type}/projection", specs.Reproject)

	// Workspace routes
	handle("GET /api/projects/{id}/files", files.GetTree)
	handle("GET /api/projects/{id}/files/read", files.ReadFile)
	handle("PUT /api/projects/{id}/files", files.WriteFile)
	handle("POST /api/projects/{id}/files", files.CreatePath)
	handle("DELETE /api/projects/{id}/files", files.DeletePath)
	handle("POST /api/projects/{id}/files/batch", files.BatchWrite)
}
