package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/feed"
	"github.com/couchcryptid/quake-map/internal/mapview"
	"github.com/couchcryptid/quake-map/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SnapshotSource provides the current earthquake snapshot and readiness.
type SnapshotSource interface {
	Snapshot(ctx context.Context) feed.Snapshot
	CheckReadiness(ctx context.Context) error
}

// Server serves the map page, its data endpoints, and the health, readiness
// and metrics endpoints.
type Server struct {
	httpServer *http.Server
	source     SnapshotSource
	opts       mapview.Options
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the map and operational routes.
func NewServer(addr string, source SnapshotSource, opts mapview.Options, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		source:  source,
		opts:    opts,
		metrics: metrics,
		logger:  logger,
	}

	mux.HandleFunc("GET /{$}", s.handleMap)
	mux.HandleFunc("GET /api/earthquakes", s.handleEarthquakes)
	mux.HandleFunc("GET /api/legend", s.handleLegend)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(source))
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer.Handler = Chain(mux, Logging(logger), Recovery(logger))
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

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	m := mapview.Build(s.source.Snapshot(r.Context()), s.opts)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if err := mapview.Render(w, m); err != nil {
		s.logger.Error("render map page failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.metrics.PageRenders.WithLabelValues("map").Inc()
}

func (s *Server) handleEarthquakes(w http.ResponseWriter, r *http.Request) {
	snap := s.source.Snapshot(r.Context())
	data, err := mapview.OverlayGeoJSON(mapview.Build(snap, s.opts))
	if err != nil {
		s.logger.Error("encode overlay failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	if !snap.FetchedAt.IsZero() {
		w.Header().Set("Last-Modified", snap.FetchedAt.UTC().Format(http.TimeFormat))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	s.metrics.PageRenders.WithLabelValues("geojson").Inc()
}

type legendResponse struct {
	Title    string               `json:"title"`
	Position string               `json:"position"`
	Entries  []domain.LegendEntry `json:"entries"`
}

func (s *Server) handleLegend(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, legendResponse{
		Title:    domain.LegendTitle,
		Position: mapview.LegendPosition,
		Entries:  domain.Legend(),
	})
	s.metrics.PageRenders.WithLabelValues("legend").Inc()
}
