package config_test

import (
	"os"
	"testing"

	"github.com/centraunit/digo"
	"github.com/centraunit/digo/config"
	"github.com/centraunit/digo/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

var keys = []string{
	"DIGO_CAPTIVE_SUPPRESS_WARNINGS",
	"DIGO_CAPTIVE_RAISE",
	"DIGO_INHERIT_CLOSED_GENERICS",
	"DIGO_LOG_LEVEL",
	"DIGO_LOG_DEVELOPMENT",
}

// unsetEnv removes the variables for the duration of the test.
func unsetEnv(t *testing.T) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "") // restored after test
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t)
	cfg := config.Load("testdata/empty.env")

	assert.False(t, cfg.Captive.SuppressWarnings)
	assert.True(t, cfg.Captive.Raise)
	assert.False(t, cfg.Generics.InheritClosed)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Development)
}

func TestLoad_EnvFile(t *testing.T) {
	unsetEnv(t)
	cfg := config.Load("testdata/relaxed.env")

	assert.True(t, cfg.Captive.SuppressWarnings)
	assert.False(t, cfg.Captive.Raise)
	assert.True(t, cfg.Generics.InheritClosed)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	unsetEnv(t)
	t.Setenv("DIGO_CAPTIVE_RAISE", "true")
	t.Setenv("DIGO_LOG_LEVEL", "warn")

	cfg := config.Load("testdata/relaxed.env")

	assert.True(t, cfg.Captive.Raise)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Captive.SuppressWarnings, "unset variables still come from the file")
}

func TestLoad_InvalidBoolFallsBack(t *testing.T) {
	unsetEnv(t)
	t.Setenv("DIGO_CAPTIVE_RAISE", "sometimes")

	cfg := config.Load("testdata/empty.env")
	assert.True(t, cfg.Captive.Raise)
}

func TestConfig_Logger(t *testing.T) {
	tests := []struct {
		level   string
		enabled zapcore.Level
		wantErr bool
	}{
		{level: "debug", enabled: zapcore.DebugLevel},
		{level: "warn", enabled: zapcore.WarnLevel},
		{level: "none"},
		{level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := &config.Config{Log: config.LogConfig{Level: tt.level}}
			logger, err := cfg.Logger()
			if tt.wantErr {
				assert.Error(t, err)
				_, err = cfg.Options()
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.level == "none" {
				assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
				return
			}
			assert.True(t, logger.Core().Enabled(tt.enabled))
			assert.False(t, logger.Core().Enabled(tt.enabled-1))
		})
	}
}

func TestConfig_NewLifetimeScope(t *testing.T) {
	b := digo.NewCatalogBuilder()
	require.NoError(t, b.RegisterType(mock.NewTransientClock, digo.ScopeTransient, digo.As[mock.Clock]()))
	require.NoError(t, b.RegisterType(mock.NewCaptiveCache, digo.ScopeSingleton))
	catalog, err := b.Build()
	require.NoError(t, err)

	t.Run("Strict", func(t *testing.T) {
		cfg := &config.Config{Captive: config.CaptiveConfig{Raise: true}, Log: config.LogConfig{Level: "none"}}
		scope, err := cfg.NewLifetimeScope(catalog)
		require.NoError(t, err)

		_, err = digo.Resolve[*mock.CaptiveCache](scope)
		var captive *digo.CaptiveDependencyError
		assert.ErrorAs(t, err, &captive)
	})

	t.Run("Relaxed", func(t *testing.T) {
		cfg := &config.Config{Captive: config.CaptiveConfig{SuppressWarnings: true}, Log: config.LogConfig{Level: "none"}}
		scope, err := cfg.NewLifetimeScope(catalog)
		require.NoError(t, err)

		cache, err := digo.Resolve[*mock.CaptiveCache](scope)
		require.NoError(t, err)
		assert.NotNil(t, cache.Clock)
	})
}
