// Package server serves the inventory over HTTP so it can be fetched by
// tools that cannot run the inventory script themselves. Every request to
// /inventory performs a fresh build against LibreNMS.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/wwolkers/librenms-inventory/internal/format"
	"github.com/wwolkers/librenms-inventory/pkg/inventory"
)

// BuildFunc produces a complete inventory for one request.
type BuildFunc func(ctx context.Context) (*inventory.Inventory, error)

type Server struct {
	Addr    string
	Timeout time.Duration
	build   BuildFunc
}

func New(addr string, build BuildFunc) *Server {
	return &Server{
		Addr:    addr,
		Timeout: 60 * time.Second,
		build:   build,
	}
}

// Router() returns the handler with every endpoint mounted.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger,
		middleware.Recoverer,
		middleware.StripSlashes,
		middleware.Timeout(s.Timeout),
	)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok\n"))
	})
	router.Get("/inventory", s.handleInventory)
	router.Get("/inventory/hosts/{host}", s.handleHost)
	return router
}

// Run() listens on s.Addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shut down server")
		}
	}()

	log.Info().Str("addr", s.Addr).Msg("serving inventory")
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	inv, ok := s.buildOrFail(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, inv.Document())
}

func (s *Server) handleHost(w http.ResponseWriter, r *http.Request) {
	inv, ok := s.buildOrFail(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, inv.HostDocument(chi.URLParam(r, "host")))
}

// buildOrFail() writes a 502 and returns false when the build fails, since
// the failure is almost always on the LibreNMS side.
func (s *Server) buildOrFail(w http.ResponseWriter, r *http.Request) (*inventory.Inventory, bool) {
	inv, err := s.build(r.Context())
	if err != nil {
		log.Error().Err(err).Str("request", middleware.GetReqID(r.Context())).Msg("failed to build inventory")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return nil, false
	}
	return inv, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	body, err := format.Marshal(v, format.FORMAT_JSON)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(append(body, '\n'))
}

// requestLogger logs each request through zerolog instead of the standard
// logger used by middleware.Logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			log.Debug().
				Str("request", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", time.Since(start)).
				Msg("handled request")
		}()
		next.ServeHTTP(ww, r)
	})
}
