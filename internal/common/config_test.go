package common

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SENTINEL_CONFIG", "SENTINEL_API_BASE_URL", "SENTINEL_HTTP_TIMEOUT", "SENTINEL_OCR_CACHE_DSN",
		"SENTINEL_EXPORT_DIR", "SENTINEL_LOG_LEVEL", "SENTINEL_LOG_FORMAT", "SENTINEL_WORKERS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Service.BaseURL != DefaultBaseURL || cfg.Service.Timeout != DefaultTimeout || cfg.Queue.Workers != DefaultWorkers {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.Cache.DSN != "" || cfg.Log.Format != "text" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sentinel.yaml")
	yml := "service:\n  base_url: http://file:9000\n  timeout: 15s\nqueue:\n  workers: 2\nlog:\n  format: json\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SENTINEL_CONFIG", path)
	t.Setenv("SENTINEL_WORKERS", "8")
	t.Setenv("SENTINEL_HTTP_TIMEOUT", "not-a-duration")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Service.BaseURL != "http://file:9000" {
		t.Fatalf("base url = %s", cfg.Service.BaseURL)
	}
	if cfg.Service.Timeout != 15*time.Second {
		t.Fatalf("timeout = %s (bad env value must keep file value)", cfg.Service.Timeout)
	}
	if cfg.Queue.Workers != 8 {
		t.Fatalf("workers = %d, env should win", cfg.Queue.Workers)
	}
	if cfg.Log.Format != "json" {
		t.Fatalf("format = %s", cfg.Log.Format)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("SENTINEL_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := LoadConfig()
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Code != "CONFIG_ERROR" {
		t.Fatalf("err = %v, want CONFIG_ERROR", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{
		Service: ServiceConfig{BaseURL: "ftp://x", Timeout: 0},
		Log:     LogConfig{Format: "xml"},
	}
	err := cfg.Validate()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if !IsValidation(err) {
		t.Fatalf("config validation error not classified as validation")
	}
}

func TestServiceEndpoint(t *testing.T) {
	s := ServiceConfig{BaseURL: "http://localhost:8000/"}
	if got := s.Endpoint("/api/ocr"); got != "http://localhost:8000/api/ocr" {
		t.Fatalf("endpoint = %s", got)
	}
}
