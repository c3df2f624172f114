package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envVars = []string{
	"ENRICH_BASE_URL", "ENRICH_WORKERS", "ENRICH_QUEUE_CAPACITY", "ENRICH_DRAIN_TIMEOUT",
	"HTTP_CLIENT_TIMEOUT", "IMPORT_LIMIT", "API_PORT", "SERVER_READ_TIMEOUT",
	"STORAGE_DIR", "LOG_DIR", "RUNS_DB_PATH", "LOG_LEVEL", "LOG_FORMAT",
}

// isolate clears every key Load reads and moves into an empty directory so
// no .env file and no default directories leak between tests.
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range envVars {
		// Setenv registers the restore; the variable itself must be absent
		// for godotenv to fill it.
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		wantErr     bool
		checkConfig func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.EnrichBaseURL != "https://jsonplaceholder.typicode.com" {
					t.Errorf("EnrichBaseURL = %q", cfg.EnrichBaseURL)
				}
				if cfg.EnrichWorkers != 6 || cfg.EnrichQueueCapacity != 10000 || cfg.ImportLimit != 100 {
					t.Errorf("workers/capacity/limit = %d/%d/%d, want 6/10000/100",
						cfg.EnrichWorkers, cfg.EnrichQueueCapacity, cfg.ImportLimit)
				}
				if cfg.EnrichDrainTimeout != 10*time.Minute || cfg.HTTPClientTimeout != 20*time.Second {
					t.Errorf("timeouts = %s/%s", cfg.EnrichDrainTimeout, cfg.HTTPClientTimeout)
				}
				if cfg.APIPort != "8080" {
					t.Errorf("APIPort = %q, want 8080", cfg.APIPort)
				}
				if cfg.RunsDBPath != filepath.Join("storage", "runs.db") {
					t.Errorf("RunsDBPath = %q", cfg.RunsDBPath)
				}
				if cfg.LogLevel != slog.LevelInfo || cfg.LogFormat != "text" {
					t.Errorf("log = %s/%s", cfg.LogLevel, cfg.LogFormat)
				}
			},
		},
		{
			name: "custom values",
			env: map[string]string{
				"ENRICH_BASE_URL":      "http://upstream:9000/",
				"ENRICH_WORKERS":       "12",
				"ENRICH_DRAIN_TIMEOUT": "30s",
				"API_PORT":             "9090",
				"LOG_LEVEL":            "debug",
				"LOG_FORMAT":           "JSON",
			},
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.EnrichBaseURL != "http://upstream:9000" {
					t.Errorf("EnrichBaseURL = %q, trailing slash should be trimmed", cfg.EnrichBaseURL)
				}
				if cfg.EnrichWorkers != 12 {
					t.Errorf("EnrichWorkers = %d, want 12", cfg.EnrichWorkers)
				}
				if cfg.EnrichDrainTimeout != 30*time.Second {
					t.Errorf("EnrichDrainTimeout = %s, want 30s", cfg.EnrichDrainTimeout)
				}
				if cfg.APIPort != "9090" {
					t.Errorf("APIPort = %q, want 9090", cfg.APIPort)
				}
				if cfg.LogLevel != slog.LevelDebug || cfg.LogFormat != "json" {
					t.Errorf("log = %s/%s, want DEBUG/json", cfg.LogLevel, cfg.LogFormat)
				}
			},
		},
		{name: "invalid workers", env: map[string]string{"ENRICH_WORKERS": "many"}, wantErr: true},
		{name: "zero workers", env: map[string]string{"ENRICH_WORKERS": "0"}, wantErr: true},
		{name: "negative capacity", env: map[string]string{"ENRICH_QUEUE_CAPACITY": "-1"}, wantErr: true},
		{name: "invalid timeout", env: map[string]string{"ENRICH_DRAIN_TIMEOUT": "soon"}, wantErr: true},
		{name: "negative timeout", env: map[string]string{"HTTP_CLIENT_TIMEOUT": "-5s"}, wantErr: true},
		{name: "invalid port", env: map[string]string{"API_PORT": "http"}, wantErr: true},
		{name: "invalid log level", env: map[string]string{"LOG_LEVEL": "loud"}, wantErr: true},
		{name: "invalid log format", env: map[string]string{"LOG_FORMAT": "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if tt.checkConfig != nil {
				tt.checkConfig(t, cfg)
			}
		})
	}
}

func TestLoad_CreatesDirectories(t *testing.T) {
	dir := isolate(t)
	storageDir := filepath.Join(dir, "data", "storage")
	logDir := filepath.Join(dir, "data", "logs")
	dbPath := filepath.Join(dir, "ledger", "runs.db")
	t.Setenv("STORAGE_DIR", storageDir)
	t.Setenv("LOG_DIR", logDir)
	t.Setenv("RUNS_DB_PATH", dbPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for _, d := range []string{storageDir, logDir, filepath.Dir(dbPath)} {
		if _, err := os.Stat(d); os.IsNotExist(err) {
			t.Errorf("Load() should create %s", d)
		}
	}
	if cfg.RunsDBPath != dbPath {
		t.Errorf("RunsDBPath = %v, want %v", cfg.RunsDBPath, dbPath)
	}
	if got := cfg.IncidentsPath(); got != filepath.Join(storageDir, "incidents.ndjson") {
		t.Errorf("IncidentsPath() = %q", got)
	}
	if got := cfg.EnrichedPath(); got != filepath.Join(storageDir, "incidents_enriched.ndjson") {
		t.Errorf("EnrichedPath() = %q", got)
	}
	if got := cfg.LocalPath(); got != filepath.Join(storageDir, "local_incidents.ndjson") {
		t.Errorf("LocalPath() = %q", got)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ENRICH_WORKERS=3\nAPI_PORT=7070\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// Already-set variables win over the file.
	t.Setenv("API_PORT", "6060")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.EnrichWorkers != 3 {
		t.Errorf("EnrichWorkers = %d, want 3 from .env", cfg.EnrichWorkers)
	}
	if cfg.APIPort != "6060" {
		t.Errorf("APIPort = %q, want 6060 from the environment", cfg.APIPort)
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue string
		want         string
	}{
		{name: "env var set", value: "set-value", defaultValue: "default", want: "set-value"},
		{name: "empty env var uses default", value: "", defaultValue: "default", want: "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_ENV_VAR", tt.value)
			if got := getEnv("TEST_ENV_VAR", tt.defaultValue); got != tt.want {
				t.Errorf("getEnv() = %q, want %q", got, tt.want)
			}
		})
	}
}
