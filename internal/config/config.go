package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	Port             string `mapstructure:"PORT"`
	Env              string `mapstructure:"ENV"`
	LogLevel         string `mapstructure:"LOG_LEVEL"`
	DatabaseURL      string `mapstructure:"DATABASE_URL"`
	RedisURL         string `mapstructure:"REDIS_URL"`
	PropertiesSource string `mapstructure:"PROPERTIES_SOURCE"`
	TemplateDir      string `mapstructure:"TEMPLATE_DIR"`
}

// Load reads the environment and an optional .env file. DATABASE_URL and
// REDIS_URL are optional: without them the portal runs on in-memory stores.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PROPERTIES_SOURCE", "config/properties.json")

	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "DATABASE_URL", "REDIS_URL", "PROPERTIES_SOURCE", "TEMPLATE_DIR"} {
		_ = v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// NewLogger builds the process logger: JSON in production, console output
// in development.
func (c *Config) NewLogger(out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}
	if c.IsDev() {
		out = zerolog.ConsoleWriter{Out: out}
	}
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
