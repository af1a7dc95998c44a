package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/couchcryptid/quake-map/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/quake-map/internal/adapter/kafka"
	"github.com/couchcryptid/quake-map/internal/adapter/mapbox"
	"github.com/couchcryptid/quake-map/internal/adapter/usgs"
	"github.com/couchcryptid/quake-map/internal/config"
	"github.com/couchcryptid/quake-map/internal/feed"
	"github.com/couchcryptid/quake-map/internal/mapview"
	"github.com/couchcryptid/quake-map/internal/observability"
	"github.com/couchcryptid/quake-map/internal/scheduler"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	if cfg.MapboxValidate {
		validateMapboxToken(cfg, metrics, logger)
	} else if cfg.MapboxToken == "" {
		logger.Warn("MAPBOX_TOKEN not set, base map tiles will not load")
	}

	// Optional event sink (feature-flagged via KAFKA_BROKERS).
	var publisher feed.Publisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("earthquake event publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	client := usgs.NewClient(cfg.FeedURL, cfg.FeedTimeout, cfg.FeedMaxRetries, metrics, logger)
	onDemand := cfg.FeedRefreshInterval == 0
	refresher := feed.New(client, publisher, onDemand, logger, metrics)

	opts := mapview.Options{
		MapboxToken: cfg.MapboxToken,
		CenterLat:   cfg.MapCenterLat,
		CenterLon:   cfg.MapCenterLon,
		Zoom:        cfg.MapZoom,
		Location:    cfg.DisplayTZ,
	}
	srv := httpadapter.NewServer(cfg.HTTPAddr, refresher, opts, metrics, logger)

	var sched *scheduler.Scheduler
	if onDemand {
		logger.Info("feed fetched on every page load", "feed_url", cfg.FeedURL)
	} else {
		runTimeout := cfg.FeedTimeout*time.Duration(cfg.FeedMaxRetries+1) + 10*time.Second
		sched = scheduler.New(refresher, cfg.FeedRefreshInterval, runTimeout, logger)
		if err := sched.Start(); err != nil {
			logger.Error("failed to start scheduler", "error", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// validateMapboxToken checks the tile token once at startup. A bad token only
// breaks the base maps, so the service keeps running either way.
func validateMapboxToken(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MapboxTimeout)
	defer cancel()

	status, err := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger).ValidateToken(ctx)
	switch {
	case err != nil:
		logger.Warn("mapbox token check failed", "error", err)
	case status.Valid:
		logger.Info("mapbox token valid")
	default:
		logger.Warn("mapbox token invalid, base map tiles will not load", "code", status.Code)
	}
}
