package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Storage.Driver != StorageDriverRedis {
		t.Errorf("expected default storage driver redis, got %q", cfg.Storage.Driver)
	}
	if cfg.API.BaseURL != "http://localhost:3001/api" {
		t.Errorf("unexpected api base url %q", cfg.API.BaseURL)
	}
	if cfg.API.ErrorMessagePath != "error" {
		t.Errorf("unexpected error message path %q", cfg.API.ErrorMessagePath)
	}
	if cfg.Session.CookieName != "vista_client" {
		t.Errorf("unexpected cookie name %q", cfg.Session.CookieName)
	}
	if cfg.Session.LogoutOnUnauthorized {
		t.Errorf("expected logout on unauthorized to be disabled by default")
	}
	if !cfg.NeedsRedis() || cfg.NeedsPostgres() {
		t.Errorf("expected only redis to be required for the default driver")
	}
}

func TestAppConfig_ParseEnv(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("API_BASE_URL", "https://api.example.com/api/")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("SESSION_LOGOUT_ON_UNAUTHORIZED", "true")
	t.Setenv("SESSION_REGISTRY_CAPACITY", "25")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("LOG_LEVEL", " DEBUG ")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Storage.Driver != StorageDriverPostgres {
		t.Fatalf("expected postgres driver, got %q", cfg.Storage.Driver)
	}
	if !cfg.NeedsPostgres() {
		t.Fatalf("expected postgres to be required")
	}
	if cfg.API.BaseURL != "https://api.example.com/api" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.API.Timeout)
	}
	if !cfg.Session.LogoutOnUnauthorized {
		t.Fatalf("expected logout on unauthorized")
	}
	if cfg.Session.RegistryCapacity != 25 {
		t.Fatalf("unexpected capacity %d", cfg.Session.RegistryCapacity)
	}
	if cfg.Postgres.Host != "db.internal" {
		t.Fatalf("unexpected db host %q", cfg.Postgres.Host)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected log level %q", cfg.LogLevel)
	}
}

func TestStorageDriver_UnmarshalTextRejectsUnknown(t *testing.T) {
	var d StorageDriver
	if err := d.UnmarshalText([]byte("localstorage")); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestSessionConfig_Sanitize(t *testing.T) {
	cfg := SessionConfig{CookieName: " ", RegistryCapacity: -1, RegistryIdleTTL: 0}
	cfg.Sanitize()

	if cfg.CookieName != "vista_client" {
		t.Errorf("expected default cookie name, got %q", cfg.CookieName)
	}
	if cfg.RegistryCapacity != 10000 {
		t.Errorf("expected default capacity, got %d", cfg.RegistryCapacity)
	}
	if cfg.RegistryIdleTTL != 30*time.Minute {
		t.Errorf("expected default idle ttl, got %s", cfg.RegistryIdleTTL)
	}
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " ",
	}

	cfg.Sanitize()

	if cfg.Enabled {
		t.Fatalf("expected enabled to be false when address is empty")
	}

	cfg = ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " statsd:1234 ",
		Prefix:        ".vista.",
	}

	cfg.Sanitize()

	if !cfg.IsEnabled() {
		t.Fatalf("expected metrics to remain enabled")
	}
	if cfg.StatsdAddress != "statsd:1234" {
		t.Fatalf("expected address to be trimmed, got %q", cfg.StatsdAddress)
	}
	if cfg.Prefix != "vista" {
		t.Fatalf("expected prefix dots trimmed, got %q", cfg.Prefix)
	}
}
