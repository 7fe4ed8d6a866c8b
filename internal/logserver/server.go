// Package logserver receives retrieve payloads on /api/log and exposes the
// recent ones, a health check and Prometheus metrics.
package logserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/litescript/ls-skyselect/internal/astro"
	"github.com/litescript/ls-skyselect/internal/logging"
	"github.com/litescript/ls-skyselect/internal/payload"
	"github.com/litescript/ls-skyselect/internal/state"
	"github.com/litescript/ls-skyselect/internal/version"
)

// Config holds log server settings.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxBodyBytes int64
	RecentLimit  int // default n for /api/selections
}

// DefaultConfig matches the port the payload client posts to.
func DefaultConfig() Config {
	return Config{
		Addr:         ":3001",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		MaxBodyBytes: 1 << 20,
		RecentLimit:  20,
	}
}

// Server is the HTTP log server.
type Server struct {
	cfg     Config
	store   *state.Manager
	logger  *logging.Logger
	metrics *Metrics
	handler http.Handler
	srv     *http.Server
}

// New wires routes and middleware. Metrics register on reg (nil for the
// default registry).
func New(cfg Config, store *state.Manager, logger *logging.Logger, reg prometheus.Registerer) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = DefaultConfig().RecentLimit
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}

	s := &Server{
		cfg:     cfg,
		store:   store,
		logger:  logger.With("component", "logserver"),
		metrics: NewMetrics(reg, store),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/log", s.handleLog)
	mux.HandleFunc("GET /api/selections", s.handleSelections)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	s.handler = s.metrics.Middleware(s.loggingMiddleware(mux))
	s.srv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Handler returns the full handler chain, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("listening on %s", ln.Addr())

	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Debug("server stopped")
	return nil
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var p payload.Payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		s.reject(w, fmt.Errorf("decode payload: %w", err))
		return
	}
	if err := p.Validate(); err != nil {
		s.reject(w, err)
		return
	}

	rec := s.store.AddPayload(p, r.RemoteAddr)
	s.logger.Slog().Info("retrieve request",
		slog.Int("id", rec.ID),
		slog.Any("telescopes", p.Telescopes()),
		slog.String("coordinations", formatCorners(p.Coordinations)),
	)

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "id": rec.ID})
}

func (s *Server) reject(w http.ResponseWriter, err error) {
	s.metrics.rejected.Inc()
	s.logger.Warn("rejected payload: %v", err)
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

func (s *Server) handleSelections(w http.ResponseWriter, r *http.Request) {
	n := s.cfg.RecentLimit
	if q := r.URL.Query().Get("n"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "n must be a positive integer"})
			return
		}
		n = v
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"records": s.store.RecentRecords(n),
		"stats":   s.store.Stats(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version.Version})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		level := slog.LevelDebug
		if rw.status >= 500 {
			level = slog.LevelError
		}
		s.logger.Slog().Log(r.Context(), level, "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rw.status),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			slog.String("remote_ip", r.RemoteAddr),
		)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func formatCorners(cs []astro.Equatorial) string {
	out := ""
	for i, c := range cs {
		if i > 0 {
			out += "; "
		}
		out += astro.FormatDegrees(c)
	}
	return out
}
