package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const configPathEnv = "CONFIG_FILE"

// Duration accepts "1h30m" style values in YAML, which yaml.v3 does not decode
// into time.Duration on its own.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config defines the ingestion service configuration. Values come from an
// optional YAML file pointed at by CONFIG_FILE, overridden per key by env
// variables.
type Config struct {
	HTTP struct {
		Port string `yaml:"port"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
	} `yaml:"redis"`
	Ingest struct {
		BatchSize   int      `yaml:"batch_size"`
		ProgressTTL Duration `yaml:"progress_ttl"`
	} `yaml:"ingest"`
}

// Load reads configuration and validates the required keys.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8090"
	cfg.Ingest.BatchSize = 100
	cfg.Ingest.ProgressTTL = Duration(time.Hour)

	if path := os.Getenv(configPathEnv); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: decode yaml: %w", err)
		}
	}

	overrideString(&cfg.HTTP.Port, "FLEETSYNC_HTTP_PORT")
	overrideString(&cfg.Database.DSN, "FLEETSYNC_POSTGRES_DSN")
	overrideString(&cfg.Redis.Addr, "FLEETSYNC_REDIS_ADDR")
	overrideString(&cfg.Redis.Password, "FLEETSYNC_REDIS_PASSWORD")
	if err := overrideInt(&cfg.Ingest.BatchSize, "FLEETSYNC_BATCH_SIZE"); err != nil {
		return nil, err
	}
	if err := overrideDuration(&cfg.Ingest.ProgressTTL, "FLEETSYNC_PROGRESS_TTL"); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if cfg.Ingest.BatchSize <= 0 {
		return nil, errors.New("config: batch size must be positive")
	}
	if cfg.Ingest.ProgressTTL <= 0 {
		return nil, errors.New("config: progress ttl must be positive")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8090"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

func overrideString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		*target = val
	}
}

func overrideInt(target *int, key string) error {
	val, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", key, err)
	}
	*target = parsed
	return nil
}

func overrideDuration(target *Duration, key string) error {
	val, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", key, err)
	}
	*target = Duration(parsed)
	return nil
}
