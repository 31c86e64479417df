package config

import "testing"

func withEnv(t *testing.T, kv map[string]string, fn func()) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(k, v)
	}
	fn()
}

func TestLoad_Defaults(t *testing.T) {
	withEnv(t, map[string]string{
		"S3_ENDPOINT":   "http://minio:9000",
		"S3_ACCESS_KEY": "key",
		"S3_SECRET_KEY": "secret",
		"S3_BUCKET":     "bucket",
	}, func() {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.S3Region != "us-east-1" {
			t.Fatalf("expected default region, got %s", cfg.S3Region)
		}
		if cfg.Host != "0.0.0.0" || cfg.Port != 5000 {
			t.Fatalf("unexpected host/port defaults: %s %d", cfg.Host, cfg.Port)
		}
		if cfg.Debug {
			t.Fatalf("expected debug false by default")
		}
	})
}

func TestLoad_MissingRequiredFailsFast(t *testing.T) {
	withEnv(t, map[string]string{
		"S3_ENDPOINT": "",
	}, func() {
		t.Setenv("S3_ACCESS_KEY", "")
		t.Setenv("S3_SECRET_KEY", "")
		t.Setenv("S3_BUCKET", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for missing required env vars")
		}
	})
}

func TestLoad_DebugTruthyValues(t *testing.T) {
	withEnv(t, map[string]string{
		"S3_ENDPOINT":   "http://minio:9000",
		"S3_ACCESS_KEY": "key",
		"S3_SECRET_KEY": "secret",
		"S3_BUCKET":     "bucket",
		"DEBUG":         "true",
	}, func() {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cfg.Debug {
			t.Fatalf("expected debug true")
		}
	})
}
