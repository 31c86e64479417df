// Package config reads the process's environment into a validated
// Config. There is no hot-reload or file-based configuration; every
// value is read once at startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds every environment-sourced setting the service needs.
type Config struct {
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Region    string
	S3Bucket    string

	Host  string
	Port  int
	Debug bool
}

// Load reads and validates the environment. Missing any storage
// variable fails construction outright — there is no partial-config
// fallback mode.
func Load() (*Config, error) {
	cfg := &Config{
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Region:    defaultString(os.Getenv("S3_REGION"), "us-east-1"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		Host:        defaultString(os.Getenv("HOST"), "0.0.0.0"),
		Port:        5000,
		Debug:       false,
	}

	if raw := os.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", raw, err)
		}
		cfg.Port = port
	}

	if raw := os.Getenv("DEBUG"); raw != "" {
		cfg.Debug = isTruthy(raw)
	}

	var missing []string
	if cfg.S3Endpoint == "" {
		missing = append(missing, "S3_ENDPOINT")
	}
	if cfg.S3AccessKey == "" {
		missing = append(missing, "S3_ACCESS_KEY")
	}
	if cfg.S3SecretKey == "" {
		missing = append(missing, "S3_SECRET_KEY")
	}
	if cfg.S3Bucket == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variable(s): %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func isTruthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
