package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv("FLEETSYNC_POSTGRES_DSN", "")
	os.Unsetenv(configPathEnv)
	os.Unsetenv("FLEETSYNC_POSTGRES_DSN")

	if _, err := Load(); err == nil {
		t.Fatalf("expected missing dsn to fail")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FLEETSYNC_POSTGRES_DSN", "postgres://localhost/fleetsync")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Port != "8090" {
		t.Fatalf("port = %q", cfg.HTTP.Port)
	}
	if cfg.Ingest.BatchSize != 100 {
		t.Fatalf("batch size = %d", cfg.Ingest.BatchSize)
	}
	if cfg.Ingest.ProgressTTL != Duration(time.Hour) {
		t.Fatalf("progress ttl = %v", cfg.Ingest.ProgressTTL)
	}
}

func TestLoadParsesProgressTTLString(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "database:\n  dsn: postgres://file/db\ningest:\n  progress_ttl: 30m\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Ingest.ProgressTTL != Duration(30*time.Minute) {
		t.Fatalf("progress ttl = %v", time.Duration(cfg.Ingest.ProgressTTL))
	}

	// Env override wins, same as every other key.
	t.Setenv("FLEETSYNC_PROGRESS_TTL", "2h")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load with override: %v", err)
	}
	if cfg.Ingest.ProgressTTL != Duration(2*time.Hour) {
		t.Fatalf("progress ttl = %v", time.Duration(cfg.Ingest.ProgressTTL))
	}
}

func TestLoadRejectsBadProgressTTL(t *testing.T) {
	t.Setenv("FLEETSYNC_POSTGRES_DSN", "postgres://localhost/fleetsync")
	t.Setenv("FLEETSYNC_PROGRESS_TTL", "ninety seconds")

	if _, err := Load(); err == nil {
		t.Fatalf("expected unparseable ttl to fail")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "http:\n  port: \"9000\"\ndatabase:\n  dsn: postgres://file/db\ningest:\n  batch_size: 50\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv("FLEETSYNC_BATCH_SIZE", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Port != "9000" {
		t.Fatalf("port = %q", cfg.HTTP.Port)
	}
	if cfg.Database.DSN != "postgres://file/db" {
		t.Fatalf("dsn = %q", cfg.Database.DSN)
	}
	if cfg.Ingest.BatchSize != 25 {
		t.Fatalf("batch size = %d, env must win over file", cfg.Ingest.BatchSize)
	}
}

func TestLoadRejectsBadBatchSize(t *testing.T) {
	t.Setenv("FLEETSYNC_POSTGRES_DSN", "postgres://localhost/fleetsync")
	t.Setenv("FLEETSYNC_BATCH_SIZE", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected zero batch size to fail")
	}
}

func TestHTTPAddress(t *testing.T) {
	var cfg Config
	cfg.HTTP.Port = "8090"
	if got := cfg.HTTPAddress(); got != ":8090" {
		t.Fatalf("address = %q", got)
	}
	cfg.HTTP.Port = ":9999"
	if got := cfg.HTTPAddress(); got != ":9999" {
		t.Fatalf("address = %q", got)
	}
}
