// Package httpapi exposes the notification store over a small local HTTP
// API so external tooling can read the badge and acknowledge entries
// while the watch daemon runs.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/spiffcs/vigil/internal/log"
	"github.com/spiffcs/vigil/internal/store"
)

// Server serves the notification API backed by a shared store.
type Server struct {
	notifs *store.Store
}

// New creates a server around the given notification store.
func New(notifs *store.Store) *Server {
	return &Server{notifs: notifs}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/notifications", s.handleList)
	r.Post("/api/notifications/{id}/read", s.handleMarkRead)
	r.Post("/api/read-all", s.handleReadAll)
	r.Get("/api/badge", s.handleBadge)

	return r
}

// Serve listens on addr until ctx is cancelled, then shuts down
// gracefully. Blocks for the lifetime of the listener.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http api shutdown failed: %w", err)
		}
		log.Info("http api stopped")
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http api failed: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.notifs.All())
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, ok := s.notifs.Find(id); !ok && !s.notifs.IsRead(id) {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown notification id %q", id))
		return
	}

	if err := s.notifs.Acknowledge(id); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "badge": s.notifs.Badge()})
}

func (s *Server) handleReadAll(w http.ResponseWriter, _ *http.Request) {
	cleared, err := s.notifs.MarkAllRead()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "cleared": cleared})
}

// handleBadge renders the badge the way a toolbar would show it: the
// positive count as text, or an empty body once everything is read.
func (s *Server) handleBadge(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if n := s.notifs.Badge(); n > 0 {
		fmt.Fprintf(w, "%d", n)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
