package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	EnrichBaseURL       string
	EnrichWorkers       int
	EnrichQueueCapacity int
	EnrichDrainTimeout  time.Duration
	HTTPClientTimeout   time.Duration
	ImportLimit         int

	APIPort           string
	ServerReadTimeout time.Duration

	StorageDir string
	LogDir     string
	RunsDBPath string

	LogLevel  slog.Level
	LogFormat string
}

// IncidentsPath is the ingestion output and enrichment input.
func (c *Config) IncidentsPath() string {
	return filepath.Join(c.StorageDir, "incidents.ndjson")
}

// EnrichedPath is the enrichment output loaded by the server.
func (c *Config) EnrichedPath() string {
	return filepath.Join(c.StorageDir, "incidents_enriched.ndjson")
}

// LocalPath is the append-only file of records created through the API.
func (c *Config) LocalPath() string {
	return filepath.Join(c.StorageDir, "local_incidents.ndjson")
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the rest.
// If a .env file exists in the current directory or a parent, it is loaded first.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		EnrichBaseURL: strings.TrimRight(getEnv("ENRICH_BASE_URL", "https://jsonplaceholder.typicode.com"), "/"),
		APIPort:       getEnv("API_PORT", "8080"),
		StorageDir:    getEnv("STORAGE_DIR", "./storage"),
		LogDir:        getEnv("LOG_DIR", "./logs"),
		LogFormat:     strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}
	cfg.RunsDBPath = getEnv("RUNS_DB_PATH", filepath.Join(cfg.StorageDir, "runs.db"))

	if cfg.EnrichWorkers, err = getPositiveInt("ENRICH_WORKERS", 6); err != nil {
		return nil, err
	}
	if cfg.EnrichQueueCapacity, err = getPositiveInt("ENRICH_QUEUE_CAPACITY", 10000); err != nil {
		return nil, err
	}
	if cfg.ImportLimit, err = getPositiveInt("IMPORT_LIMIT", 100); err != nil {
		return nil, err
	}
	if cfg.EnrichDrainTimeout, err = getDuration("ENRICH_DRAIN_TIMEOUT", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.HTTPClientTimeout, err = getDuration("HTTP_CLIENT_TIMEOUT", 20*time.Second); err != nil {
		return nil, err
	}
	if cfg.ServerReadTimeout, err = getDuration("SERVER_READ_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error: %w", err)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	if _, err := strconv.Atoi(cfg.APIPort); err != nil {
		return nil, fmt.Errorf("API_PORT must be a valid integer: %w", err)
	}

	for _, dir := range []string{cfg.StorageDir, cfg.LogDir, filepath.Dir(cfg.RunsDBPath)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getPositiveInt(key string, defaultValue int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("%s must be at least 1", key)
	}
	return n, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration such as 30s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}
