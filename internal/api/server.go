// Package api provides the HTTP server for KeepWell.
// It exposes the milestone REST API under /api/v1 plus health and
// metrics endpoints for operators.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/keepwell-care/keepwell/internal/app/milestone"
	"github.com/keepwell-care/keepwell/internal/domain"
	"github.com/keepwell-care/keepwell/internal/health"
)

// scoreStore is what the API needs from storage: record daily scores
// and read weekly rollups back.
type scoreStore interface {
	domain.ScoreRecorder
	domain.ScoreSource
}

// Server is the KeepWell HTTP API server.
type Server struct {
	milestones     *milestone.Service
	scores         scoreStore
	checker        *health.Checker
	log            zerolog.Logger
	version        string
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(milestones *milestone.Service, scores scoreStore, log zerolog.Logger) *Server {
	return &Server{
		milestones: milestones,
		scores:     scores,
		log:        log,
		version:    "dev",
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealthChecker wires the health checker into /health.
func (s *Server) SetHealthChecker(c *health.Checker) { s.checker = c }

// SetVersion sets the version string reported by /api/v1/version.
func (s *Server) SetVersion(v string) { s.version = v }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	// Health check for load balancers and orchestrators
	r.Get("/health", s.handleHealth)

	r.Get("/api/v1/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version": s.version,
		})
	})

	// Milestone REST API
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/users/{userID}/milestones", s.handleGetMilestones)
		r.Post("/users/{userID}/milestones/invalidate", s.handleInvalidateMilestones)
		r.Get("/users/{userID}/scores", s.handleGetScores)
		r.Post("/scores", s.handleRecordScore)
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "KeepWell is running",
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.checker == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	report := s.checker.Status()
	status := http.StatusOK
	if !report.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// errStatus maps domain errors onto HTTP status codes.
func errStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidUserID),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrFutureDate),
		errors.Is(err, domain.ErrScoreOutOfRange),
		errors.Is(err, domain.ErrUnknownCategory):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
