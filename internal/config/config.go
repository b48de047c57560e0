// Package config handles application configuration loading from environment
// variables and an optional YAML file. It provides a centralized Config
// struct used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// S3-compatible storage for shared documents. Empty endpoint disables it.
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string

	// Editor behaviour
	HistoryLimit     int
	AutosaveInterval time.Duration
	ExportCacheTTL   time.Duration
}

// source resolves a key: environment first, then the YAML file.
type source struct {
	file map[string]string
}

func (s source) get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if v := s.file[key]; v != "" {
		return v
	}
	return fallback
}

// Load reads configuration, applying defaults for development where
// appropriate. When CONFIG_FILE names a YAML file, its values (keyed by
// the environment variable names) are used for anything the environment
// leaves unset. Returns an error if critical values are missing in
// production mode.
func Load() (*Config, error) {
	src := source{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		file, err := readFile(path)
		if err != nil {
			return nil, err
		}
		src.file = file
	}

	cfg := &Config{
		Host: src.get("APP_HOST", "0.0.0.0"),
		Port: src.get("APP_PORT", "8080"),
		Env:  src.get("APP_ENV", "development"),

		DBHost:     src.get("POSTGRES_HOST", "localhost"),
		DBPort:     src.get("POSTGRES_PORT", "5432"),
		DBUser:     src.get("POSTGRES_USER", "deckpress"),
		DBPassword: src.get("POSTGRES_PASSWORD", "changeme"),
		DBName:     src.get("POSTGRES_DB", "deckpress"),

		ValkeyHost:     src.get("VALKEY_HOST", "localhost"),
		ValkeyPort:     src.get("VALKEY_PORT", "6379"),
		ValkeyPassword: src.get("VALKEY_PASSWORD", ""),

		S3Endpoint:  src.get("S3_ENDPOINT", ""),
		S3Region:    src.get("S3_REGION", "fsn1"),
		S3AccessKey: src.get("S3_ACCESS_KEY", ""),
		S3SecretKey: src.get("S3_SECRET_KEY", ""),
		S3Bucket:    src.get("S3_BUCKET", "deckpress-documents"),
	}

	var err error
	if cfg.HistoryLimit, err = strconv.Atoi(src.get("HISTORY_LIMIT", "100")); err != nil || cfg.HistoryLimit < 0 {
		return nil, fmt.Errorf("HISTORY_LIMIT must be a non-negative integer")
	}
	if cfg.AutosaveInterval, err = parseDuration(src, "AUTOSAVE_INTERVAL", "30s"); err != nil {
		return nil, err
	}
	if cfg.ExportCacheTTL, err = parseDuration(src, "EXPORT_CACHE_TTL", "10m"); err != nil {
		return nil, err
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return values, nil
}

func parseDuration(src source, key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(src.get(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration", key)
	}
	return d, nil
}
