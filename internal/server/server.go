// Package server exposes the learning API over HTTP: session lifecycle,
// course generation, the quiz flow, exports, feedback, and a websocket
// stream of session events.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/geeddi-ai/geeddi-server/internal/feedback"
	"github.com/geeddi-ai/geeddi-server/internal/session"
	"github.com/geeddi-ai/geeddi-server/internal/topics"
)

const readyProbeTimeout = 3 * time.Second

// ReadyCheck reports whether a backing dependency is reachable.
type ReadyCheck func(ctx context.Context) error

// Config holds the dependencies of a Server.
type Config struct {
	Sessions *session.Manager
	Feedback feedback.Store
	Topics   *topics.Catalog
	Ready    map[string]ReadyCheck
}

// Server routes API requests to the session manager and stores.
type Server struct {
	sessions *session.Manager
	feedback feedback.Store
	topics   *topics.Catalog
	ready    map[string]ReadyCheck
}

// New creates a Server.
func New(cfg Config) (*Server, error) {
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if cfg.Feedback == nil {
		return nil, fmt.Errorf("feedback store is required")
	}
	if cfg.Topics == nil {
		return nil, fmt.Errorf("topic catalog is required")
	}
	return &Server{
		sessions: cfg.Sessions,
		feedback: cfg.Feedback,
		topics:   cfg.Topics,
		ready:    cfg.Ready,
	}, nil
}

// Routes builds the HTTP router.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /api/topics", s.handleTopics)

	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /api/sessions/{id}/course", s.handleGenerateCourse)
	mux.HandleFunc("PUT /api/sessions/{id}/language", s.handleSetLanguage)
	mux.HandleFunc("POST /api/sessions/{id}/quiz/{index}/answer", s.handleAnswer)
	mux.HandleFunc("GET /api/sessions/{id}/export", s.handleExport)
	mux.HandleFunc("GET /api/sessions/{id}/events", s.handleEvents)

	mux.HandleFunc("GET /api/feedback", s.handleGetFeedback)
	mux.HandleFunc("PUT /api/feedback", s.handlePutFeedback)

	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	for name, check := range s.ready {
		ctx, cancel := context.WithTimeout(r.Context(), readyProbeTimeout)
		err := check(ctx)
		cancel()
		if err != nil {
			slog.Warn("readiness check failed", "check", name, "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"check":  name,
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// readJSON decodes the request body, rejecting unknown fields.
func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}
