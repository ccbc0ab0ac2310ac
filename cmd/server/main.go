package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/accident-map/internal/accidents"
	httpadapter "github.com/couchcryptid/accident-map/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/accident-map/internal/adapter/kafka"
	"github.com/couchcryptid/accident-map/internal/adapter/mapbox"
	"github.com/couchcryptid/accident-map/internal/config"
	"github.com/couchcryptid/accident-map/internal/observability"
	"github.com/couchcryptid/accident-map/internal/store"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

type accidentStore interface {
	accidents.Store
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// Every /geojson request geocodes its location, so the service cannot run without Mapbox.
	if !cfg.MapboxEnabled {
		logger.Error("mapbox geocoding is required; set MAPBOX_TOKEN")
		os.Exit(1)
	}
	client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
	geocoder := mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
	metrics.GeocodeEnabled.Set(1)
	logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}

	var opts []accidents.Option
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		opts = append(opts, accidents.WithPublisher(writer))
		logger.Info("query audit events enabled", "topic", cfg.KafkaAuditTopic, "brokers", cfg.KafkaBrokers)
	}

	svc := accidents.NewService(geocoder, st, cfg.DefaultLocation, metrics, logger, opts...)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

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
	if err := st.Close(); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("shutdown complete")
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (accidentStore, error) {
	if cfg.StoreDriver == config.StorePostgres {
		return store.NewPostgres(ctx, cfg.DatabaseURL, logger)
	}
	return store.OpenSQLite(ctx, cfg.SQLitePath, logger)
}
