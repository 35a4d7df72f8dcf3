package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/centraunit/digo"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config is the environment driven configuration of a root lifetime scope.
type Config struct {
	Captive  CaptiveConfig
	Generics GenericsConfig
	Log      LogConfig
}

type CaptiveConfig struct {
	SuppressWarnings bool
	Raise            bool
}

type GenericsConfig struct {
	// InheritClosed lets child scopes reuse generic types closed by their
	// ancestors.
	InheritClosed bool
}

type LogConfig struct {
	Level       string // debug | info | warn | error | none
	Development bool
}

// Load reads .env (if present) and populates a Config from environment variables.
// Variables already set in the environment take precedence over the files.
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env is optional
	_ = godotenv.Load(files...)

	return &Config{
		Captive: CaptiveConfig{
			SuppressWarnings: envBool("DIGO_CAPTIVE_SUPPRESS_WARNINGS", false),
			Raise:            envBool("DIGO_CAPTIVE_RAISE", true),
		},
		Generics: GenericsConfig{
			InheritClosed: envBool("DIGO_INHERIT_CLOSED_GENERICS", false),
		},
		Log: LogConfig{
			Level:       env("DIGO_LOG_LEVEL", "info"),
			Development: envBool("DIGO_LOG_DEVELOPMENT", false),
		},
	}
}

// Logger builds the zap logger described by the log configuration.
func (c *Config) Logger() (*zap.Logger, error) {
	if strings.EqualFold(c.Log.Level, "none") {
		return zap.NewNop(), nil
	}

	level, err := zap.ParseAtomicLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("config: DIGO_LOG_LEVEL: %w", err)
	}

	cfg := zap.NewProductionConfig()
	if c.Log.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = level
	return cfg.Build()
}

// Options turns the configuration into lifetime scope options.
func (c *Config) Options() ([]digo.Option, error) {
	logger, err := c.Logger()
	if err != nil {
		return nil, err
	}

	return []digo.Option{
		digo.WithLogger(logger),
		digo.WithCaptivePolicy(digo.CaptivePolicy{
			SuppressWarnings: c.Captive.SuppressWarnings,
			Raise:            c.Captive.Raise,
		}),
		digo.WithInheritedClosedGenerics(c.Generics.InheritClosed),
	}, nil
}

// NewLifetimeScope creates a root scope over catalog configured by c.
func (c *Config) NewLifetimeScope(catalog digo.Catalog, opts ...digo.Option) (*digo.LifetimeScope, error) {
	configured, err := c.Options()
	if err != nil {
		return nil, err
	}
	return digo.NewLifetimeScope(catalog, append(configured, opts...)...), nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
