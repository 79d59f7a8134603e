package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings, populated from environment variables.
// Filtering policy (keywords, cutoff, reference files) lives in the YAML
// rules file, see Rules.
type Config struct {
	APIBaseURL string
	TaxonName  string
	PlaceID    int
	MaxResults int
	APITimeout time.Duration

	RulesPath string
	OutputDir string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// WatchInterval > 0 re-runs the pipeline on that interval and keeps the
	// HTTP endpoints up. Zero means run once and exit.
	WatchInterval time.Duration
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	placeID, err := envInt("PLACE_ID", 6774)
	if err != nil {
		return nil, err
	}
	maxResults, err := envInt("MAX_RESULTS", 500)
	if err != nil {
		return nil, err
	}
	apiTimeout, err := envDuration("API_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	watchInterval, err := envDuration("WATCH_INTERVAL", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		APIBaseURL: envOrDefault("API_BASE_URL", "https://api.inaturalist.org/v1"),
		TaxonName:  envOrDefault("TAXON_NAME", "Gyps fulvus"),
		PlaceID:    placeID,
		MaxResults: maxResults,
		APITimeout: apiTimeout,

		RulesPath: envOrDefault("RULES_PATH", "config/rules.yaml"),
		OutputDir: envOrDefault("OUTPUT_DIR", "out"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		WatchInterval:   watchInterval,
	}

	if cfg.TaxonName == "" {
		return nil, errors.New("TAXON_NAME is required")
	}
	if cfg.PlaceID <= 0 {
		return nil, errors.New("PLACE_ID must be positive")
	}
	if cfg.MaxResults <= 0 {
		return nil, errors.New("MAX_RESULTS must be positive")
	}
	if cfg.APITimeout <= 0 {
		return nil, errors.New("API_TIMEOUT must be positive")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if cfg.WatchInterval < 0 {
		return nil, errors.New("WATCH_INTERVAL must not be negative")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
