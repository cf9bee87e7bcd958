// package server exposes the scan pipeline over HTTP: a minimal upload
// page, a scan endpoint, and stats and history queries.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songscan/internal/shared"
)

// Middleware wraps a handler with cross-cutting behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that can report the routes it serves.
type Handler interface {
	http.Handler
	Routes() []string
}

// Router registers handlers and applies middleware to the whole tree.
type Router interface {
	http.Handler
	Handle(pattern string, handler http.Handler)
	Apply(mw ...Middleware) http.Handler
}

// BasicRouter is a [Router] over [http.ServeMux]. Patterns may carry a
// method prefix ("POST /api/scan"); unmatched methods get 405.
type BasicRouter struct {
	mux *http.ServeMux
}

// NewRouter creates an empty router.
func NewRouter() *BasicRouter {
	return &BasicRouter{mux: http.NewServeMux()}
}

func (r *BasicRouter) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps the router in middleware. The first middleware listed is
// the outermost.
func (r *BasicRouter) Apply(mw ...Middleware) http.Handler {
	var h http.Handler = r
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// Server runs the HTTP surface over a configured pipeline.
type Server struct {
	addr   string
	router *BasicRouter
	logger *log.Logger
	http   *http.Server
}

// New creates a server hosting the given handlers at addr.
func New(addr string, logger *log.Logger, handlers ...Handler) *Server {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	router := NewRouter()
	for _, h := range handlers {
		for _, route := range h.Routes() {
			router.Handle(route, h)
		}
	}

	s := &Server{addr: addr, router: router, logger: logger}

	wrapped := router.Apply(
		RequestID(),
		RequestLogger(logger),
		RateLimit(5, 10),
	)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           wrapped,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe blocks until the server stops or the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// writeJSON writes a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, false)
	if err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError writes a JSON error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
