package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Store drivers accepted in STORE_DRIVER.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds all service and client settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// Accident store.
	StoreDriver     string
	DatabaseURL     string
	SQLitePath      string
	DefaultLocation string

	// Query audit events.
	KafkaEnabled    bool
	KafkaBrokers    []string
	KafkaAuditTopic string

	// Map client.
	APIBaseURL     string
	ClientLocation string
	FetchTimeout   time.Duration
	AnimationFrame time.Duration
	MapStyle       string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parsePositiveDuration("FETCH_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	animationFrame, err := parsePositiveDuration("ANIMATION_FRAME", "16ms")
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),

		StoreDriver:     sharedcfg.EnvOrDefault("STORE_DRIVER", StoreSQLite),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SQLitePath:      sharedcfg.EnvOrDefault("SQLITE_PATH", "accidents.db"),
		DefaultLocation: sharedcfg.EnvOrDefault("DEFAULT_LOCATION", "Long Beach"),

		KafkaEnabled:    os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaAuditTopic: sharedcfg.EnvOrDefault("KAFKA_AUDIT_TOPIC", "accident-queries"),

		APIBaseURL:     sharedcfg.EnvOrDefault("API_BASE_URL", "http://localhost:8080"),
		ClientLocation: sharedcfg.EnvOrDefault("CLIENT_LOCATION", "Santa Monica, California, United States"),
		FetchTimeout:   fetchTimeout,
		AnimationFrame: animationFrame,
		MapStyle:       sharedcfg.EnvOrDefault("MAP_STYLE", "mapbox://styles/mapbox/streets-v11"),
	}

	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	switch cfg.StoreDriver {
	case StoreSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLITE_PATH is required for the sqlite store")
		}
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres store")
		}
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q: want %s or %s", cfg.StoreDriver, StoreSQLite, StorePostgres)
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaAuditTopic == "" {
			return nil, errors.New("KAFKA_AUDIT_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func parsePositiveDuration(name, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(name, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return d, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
