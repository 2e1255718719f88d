// Package api exposes a read-only local HTTP surface over a running client:
// Prometheus metrics, a health probe, and game aggregate snapshots as JSON.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matchwire-dev/matchwire/pkg/client"
	"github.com/matchwire-dev/matchwire/pkg/summary"
)

// Snapshotter is the slice of the client the API reads from.
type Snapshotter interface {
	SnapshotGame(game, user string) (client.GameState, bool)
	LoggedIn() bool
}

// Server serves the local stats endpoints.
type Server struct {
	source Snapshotter
	logger *slog.Logger
	http   *http.Server
}

// New creates a stats server over the given snapshot source.
func New(addr string, source Snapshotter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		source: source,
		logger: logger.With("component", "api"),
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/games/{game}/users/{user}", s.handleGame)
	r.Get("/games/{game}/users/{user}/summary", s.handleSummary)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the underlying HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start begins serving. It blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("stats server listening", "addr", s.http.Addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := map[string]any{
		"status":    "ok",
		"logged_in": s.source.LoggedIn(),
	}
	writeJSON(w, http.StatusOK, status)
}

// handleGame returns the aggregate snapshot for one (game, user) pair.
// An unseen pair reports the empty default aggregate rather than an error,
// matching the summary command's semantics.
func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	game := chi.URLParam(r, "game")
	user := chi.URLParam(r, "user")

	state, found := s.source.SnapshotGame(game, user)
	writeJSON(w, http.StatusOK, map[string]any{
		"game":          game,
		"user":          user,
		"found":         found,
		"team_a":        state.TeamA,
		"team_b":        state.TeamB,
		"general_stats": orEmpty(state.GeneralStats),
		"team_a_stats":  orEmpty(state.TeamAStats),
		"team_b_stats":  orEmpty(state.TeamBStats),
		"events":        eventsJSON(state.Events),
	})
}

// handleSummary returns the rendered text report.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	game := chi.URLParam(r, "game")
	user := chi.URLParam(r, "user")

	state, _ := s.source.SnapshotGame(game, user)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(summary.Render(game, state))
}

func eventsJSON(events []client.GameEvent) []map[string]any {
	out := make([]map[string]any, 0, len(events))
	for _, ge := range events {
		out = append(out, map[string]any{
			"name":        ge.Event.Name,
			"time":        ge.Event.Time,
			"half":        ge.Half,
			"seq":         ge.Seq,
			"description": ge.Event.Description,
		})
	}
	return out
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
