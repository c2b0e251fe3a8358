// Package server exposes readability measurements as a JSON HTTP API.
//
// Endpoints:
//
//	POST /api/measure     body: {"text":"...","lang":"en","lines":false,"merge":false}
//	GET  /api/languages
//	GET  /healthz
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/readability/internal/lang"
	"github.com/verte-zerg/readability/internal/measure"
	"github.com/verte-zerg/readability/internal/readability"
	"github.com/verte-zerg/readability/internal/result"
)

const (
	maxBodyBytes    = 8 << 20
	shutdownTimeout = 5 * time.Second
)

// Config configures the HTTP API.
type Config struct {
	Addr           string
	AllowedOrigins []string
	DefaultLang    string
}

type measureRequest struct {
	Text  string `json:"text"`
	Lang  string `json:"lang"`
	Lines bool   `json:"lines"`
	Merge bool   `json:"merge"`
}

type languagesResponse struct {
	Languages []string `json:"languages"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server serves measurements for one language registry.
type Server struct {
	reg    *lang.Registry
	cfg    Config
	logger zerolog.Logger
}

// New builds a server. An empty default language falls back to "en".
func New(reg *lang.Registry, cfg Config, logger zerolog.Logger) *Server {
	if cfg.DefaultLang == "" {
		cfg.DefaultLang = "en"
	}
	return &Server{reg: reg, cfg: cfg, logger: logger}
}

// Handler returns the routed handler with CORS and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/measure", s.handleMeasure)
	mux.HandleFunc("/api/languages", s.handleLanguages)
	mux.HandleFunc("/healthz", s.handleHealth)

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})
	return s.logRequests(c.Handler(mux))
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info().Msg("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func (s *Server) handleMeasure(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var body measureRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "body must be JSON with a 'text' field")
		return
	}
	if body.Lang == "" {
		body.Lang = s.cfg.DefaultLang
	}

	opts := readability.Options{Lang: body.Lang, Merge: body.Merge}
	var (
		res result.Result
		err error
	)
	if body.Lines {
		res, err = readability.MeasureReader(s.reg, strings.NewReader(body.Text), opts)
	} else {
		res, err = readability.MeasureText(s.reg, body.Text, opts)
	}
	if err != nil {
		s.writeError(w, statusFor(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, lang.ErrUnknownLanguage):
		return http.StatusNotFound
	case errors.Is(err, measure.ErrEmptyInput), errors.Is(err, measure.ErrMalformedInput):
		return http.StatusBadRequest
	case errors.Is(err, result.ErrKeyCollision):
		// A profile classifier shadows a result key.
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	s.writeJSON(w, http.StatusOK, languagesResponse{Languages: s.reg.Codes()})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(p)
	r.bytes += n
	return n, err
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		event := s.logger.Info()
		if status >= http.StatusInternalServerError {
			event = s.logger.Error()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", rec.bytes).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
