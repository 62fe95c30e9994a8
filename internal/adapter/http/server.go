package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/floatchat/internal/domain"
	"github.com/couchcryptid/floatchat/internal/export"
)

const maxQuestionBytes = 16 << 10

// QueryService answers questions and reports readiness.
// Lookup returns domain.ErrOutOfScope or domain.ErrEmptyResult when a
// question cannot produce an export.
type QueryService interface {
	sharedobs.ReadinessChecker
	Ask(ctx context.Context, text string) domain.Response
	Lookup(ctx context.Context, text string) (domain.QueryIntent, []domain.MeasurementRecord, error)
}

// Server exposes the query API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        QueryService
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /ask, /export, /healthz, /readyz,
// and /metrics routes.
func NewServer(addr string, svc QueryService, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second, // two augmenter calls per question
			IdleTimeout:  60 * time.Second,
		},
		svc:    svc,
		logger: logger,
	}

	mux.HandleFunc("POST /ask", s.handleAsk)
	mux.HandleFunc("GET /export", s.handleExport)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(svc))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type askRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQuestionBytes)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "question too long")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	sharedobs.WriteJSON(w, http.StatusOK, s.svc.Ask(r.Context(), text))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	text := strings.TrimSpace(r.URL.Query().Get("q"))
	if text == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, records, err := s.svc.Lookup(r.Context(), text)
	switch {
	case errors.Is(err, domain.ErrOutOfScope):
		writeError(w, http.StatusUnprocessableEntity, "question does not name a parameter, region or time period")
		return
	case errors.Is(err, domain.ErrEmptyResult):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		s.logger.Error("export lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="floatchat-export.%s"`, format))
	w.WriteHeader(http.StatusOK)
	if err := export.Write(w, format, records); err != nil {
		s.logger.Error("export failed", "error", err, "records", len(records))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
