// Package api serves the problem generator and task service over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/p-n-ai/pai-classroom/internal/generator"
	"github.com/p-n-ai/pai-classroom/internal/task"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Checker reports whether a dependency is reachable.
type Checker func(ctx context.Context) error

// Config holds the dependencies of a Server.
type Config struct {
	Generator *generator.Orchestrator
	Tasks     *task.Service
	Auth      *Authenticator
	// RateLimit wraps task routes; nil disables rate limiting.
	RateLimit func(http.Handler) http.Handler
	// Ready lists the dependencies /readyz pings, by name.
	Ready map[string]Checker
}

// Server holds HTTP handlers.
type Server struct {
	gen     *generator.Orchestrator
	tasks   *task.Service
	auth    *Authenticator
	limit   func(http.Handler) http.Handler
	ready   map[string]Checker
	schemas *schemas
}

// NewServer creates a server. It fails only when the embedded request
// schemas do not compile.
func NewServer(cfg Config) (*Server, error) {
	sch, err := loadSchemas()
	if err != nil {
		return nil, err
	}
	limit := cfg.RateLimit
	if limit == nil {
		limit = func(h http.Handler) http.Handler { return h }
	}
	return &Server{
		gen:     cfg.Generator,
		tasks:   cfg.Tasks,
		auth:    cfg.Auth,
		limit:   limit,
		ready:   cfg.Ready,
		schemas: sch,
	}, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /api/problems", s.handleIndex)
	mux.HandleFunc("GET /api/problems/live", s.handleLive)
	mux.HandleFunc("GET /api/problems/{path...}", s.handlePreview)

	protect := func(h http.HandlerFunc) http.Handler {
		return s.limit(s.auth.Middleware(h))
	}
	mux.Handle("POST /api/tasks", protect(s.handleCreateTask))
	mux.Handle("GET /api/classes/{classID}/tasks", protect(s.handleListTasks))
	mux.Handle("GET /api/tasks/{id}", protect(s.handleGetTask))
	mux.Handle("DELETE /api/tasks/{id}", protect(s.handleDeleteTask))
	mux.Handle("GET /api/tasks/{id}/problems/{studentNumber}", protect(s.handleGetProblems))
	mux.Handle("PUT /api/tasks/{id}/grade/{studentNumber}", protect(s.handleSetGraded))
	mux.Handle("PUT /api/tasks/{id}/name", protect(s.handleRename))
	mux.Handle("PUT /api/tasks/{id}/description", protect(s.handleDescribe))
	mux.Handle("GET /api/tasks/{id}/export", protect(s.handleExport))

	return mux
}
