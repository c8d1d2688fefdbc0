package httpadapter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/tide-calendar-sync/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DaySyncer syncs one location and date on demand.
type DaySyncer interface {
	Sync(ctx context.Context, locationID string, date civil.Date) (domain.SyncResult, error)
}

// Server exposes health, readiness, metrics, and on-demand sync endpoints.
type Server struct {
	httpServer *http.Server
	syncer     DaySyncer
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// POST /sync/{location}/{date} routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, syncer DaySyncer, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		syncer: syncer,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /sync/{location}/{date}", s.handleSync)

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

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	locationID := r.PathValue("location")
	date, err := civil.ParseDate(r.PathValue("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidDate)
		return
	}

	result, err := s.syncer.Sync(r.Context(), locationID, date)
	if err != nil {
		status := statusFor(err)
		s.logger.Warn("on-demand sync failed", "location", locationID, "date", date.String(), "status", status, "error", err)
		writeError(w, status, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, result)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidDate):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrLocationNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
