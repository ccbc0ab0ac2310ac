package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/accident-map/internal/accidents"
	"github.com/couchcryptid/accident-map/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// QueryService answers /geojson requests.
type QueryService interface {
	Query(ctx context.Context, q domain.AccidentQuery) (domain.ResultBody, error)
	CheckReadiness(ctx context.Context) error
	DefaultLocation() string
}

// Server exposes the accident query endpoint plus health, readiness, and
// metrics routes.
type Server struct {
	httpServer *http.Server
	service    QueryService
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /geojson, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, service QueryService, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           requestLogger(logger, mux),
			ReadHeaderTimeout: 10 * time.Second,
			// Area queries over large places can run long.
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		service: service,
		logger:  logger,
	}

	mux.HandleFunc("GET "+domain.QueryPath, s.handleGeoJSON)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(service))
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

func (s *Server) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	// Only an absent parameter gets the default; an empty one is queried as is.
	location := s.service.DefaultLocation()
	if params.Has("location") {
		location = strings.TrimSpace(params.Get("location"))
	}
	q := domain.AccidentQuery{
		Location:  location,
		Severity:  strings.TrimSpace(params.Get("severity")),
		StartDate: strings.TrimSpace(params.Get("start_date")),
		EndDate:   strings.TrimSpace(params.Get("end_date")),
	}

	body, err := s.service.Query(r.Context(), q)
	switch {
	case err == nil:
		sharedobs.WriteJSON(w, http.StatusOK, body)
	case errors.Is(err, accidents.ErrGeocoding), errors.Is(err, accidents.ErrLocationNotFound):
		sharedobs.WriteJSON(w, http.StatusBadRequest, domain.ErrorBody{Error: err.Error()})
	case errors.Is(err, accidents.ErrNoData):
		sharedobs.WriteJSON(w, http.StatusNotFound, domain.ErrorBody{Error: "No data found"})
	default:
		sharedobs.WriteJSON(w, http.StatusInternalServerError, domain.ErrorBody{Error: err.Error()})
	}
}

// statusRecorder captures the response code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requestLogger logs one line per request, skipping the health and metrics routes.
func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/healthz", "/readyz", "/metrics":
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"status", rec.status,
			"latency", time.Since(start),
		)
	})
}
