package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/joblog"
	"github.com/starford/raido/internal/styleservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// jobs records completed operations; pass joblog.Discard{} to keep
// nothing.
func NewRouter(svc *styleservice.Service, jobs joblog.Log, authEnabled bool, token string) chi.Router {
	h := NewHandler(svc, jobs)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Style operations. Documents travel as multipart uploads.
	r.Post("/styles/list", h.ListStyles)
	r.Post("/styles/export", h.ExportStyles)
	r.Post("/styles/migrate", h.MigrateStyles)
	r.Post("/styles/clean", h.CleanStyles)

	// Operation history.
	r.Get("/jobs", h.ListJobs)

	return r
}
