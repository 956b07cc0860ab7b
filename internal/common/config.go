package common

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Cache   CacheConfig   `yaml:"cache"`
	Export  ExportConfig  `yaml:"export"`
	Log     LogConfig     `yaml:"log"`
	Queue   QueueConfig   `yaml:"queue"`
}

// ServiceConfig holds the collaborator service address
type ServiceConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// CacheConfig holds OCR cache configuration. An empty DSN disables the cache.
type CacheConfig struct {
	DSN string `yaml:"dsn"`
}

// ExportConfig holds export-related configuration
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
}

// QueueConfig holds background worker configuration
type QueueConfig struct {
	Workers int `yaml:"workers"`
}

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 60 * time.Second
	DefaultWorkers = 4
)

// LoadConfig loads configuration from an optional YAML file (SENTINEL_CONFIG)
// and then applies environment variable overrides.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Service: ServiceConfig{BaseURL: DefaultBaseURL, Timeout: DefaultTimeout},
		Export:  ExportConfig{Dir: "."},
		Log:     LogConfig{Level: "info", Format: "text"},
		Queue:   QueueConfig{Workers: DefaultWorkers},
	}

	if path := getEnv("SENTINEL_CONFIG", ""); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Service.BaseURL = getEnv("SENTINEL_API_BASE_URL", cfg.Service.BaseURL)
	cfg.Service.Timeout = getEnvAsDuration("SENTINEL_HTTP_TIMEOUT", cfg.Service.Timeout)
	cfg.Cache.DSN = getEnv("SENTINEL_OCR_CACHE_DSN", cfg.Cache.DSN)
	cfg.Export.Dir = getEnv("SENTINEL_EXPORT_DIR", cfg.Export.Dir)
	cfg.Log.Level = getEnv("SENTINEL_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("SENTINEL_LOG_FORMAT", cfg.Log.Format)
	cfg.Queue.Workers = getEnvAsInt("SENTINEL_WORKERS", cfg.Queue.Workers)
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return NewAppError("CONFIG_ERROR", "read config file", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return NewAppError("CONFIG_ERROR", "parse config file "+path, err)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("service.base_url", c.Service.BaseURL, Required, HTTPURL).
		Field("log.format", c.Log.Format, OneOf("text", "json"))
	if c.Service.Timeout <= 0 {
		v.Add("service.timeout", c.Service.Timeout, "must be positive")
	}
	if c.Queue.Workers <= 0 {
		v.Add("queue.workers", c.Queue.Workers, "must be positive")
	}
	if err := v.Error(); err != nil {
		return NewAppError("CONFIG_ERROR", "invalid configuration", err)
	}
	return nil
}

// Endpoint joins the service base URL with an API path.
func (c ServiceConfig) Endpoint(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// HTTPURL requires an absolute http(s) URL.
func HTTPURL(fieldName string, value interface{}) *ValidationError {
	s, ok := value.(string)
	if !ok || s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be an http(s) URL"}
	}
	return nil
}
