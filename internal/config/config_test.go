package config

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Errorf("expected development env, got %s", cfg.Env)
	}
	if cfg.PropertiesSource != "config/properties.json" {
		t.Errorf("unexpected properties source %s", cfg.PropertiesSource)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" || cfg.Env != "production" || cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.IsDev() {
		t.Error("expected production")
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "chatty")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid LOG_LEVEL")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{Env: "production", LogLevel: "warn"}
	logger := cfg.NewLogger(&buf)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	if bytes.Contains(buf.Bytes(), []byte("hidden")) {
		t.Error("info message should be filtered")
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"message":"shown"`)) {
		t.Errorf("expected JSON warn line, got %s", buf.String())
	}
	if logger.GetLevel() != zerolog.WarnLevel {
		t.Errorf("expected warn level, got %s", logger.GetLevel())
	}
}
