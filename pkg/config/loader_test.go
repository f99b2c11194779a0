package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danceloop/notifykit/pkg/config"
)

type testConfig struct {
	Interval time.Duration `env:"CONFIG_TEST_INTERVAL" envDefault:"30s"`
	Name     string        `env:"CONFIG_TEST_NAME" envDefault:"notify"`
	Required string        `env:"CONFIG_TEST_REQUIRED,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		t.Setenv("CONFIG_TEST_REQUIRED", "set")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, 30*time.Second, cfg.Interval)
		assert.Equal(t, "notify", cfg.Name)
		assert.Equal(t, "set", cfg.Required)
	})

	t.Run("env overrides defaults", func(t *testing.T) {
		t.Setenv("CONFIG_TEST_REQUIRED", "set")
		t.Setenv("CONFIG_TEST_INTERVAL", "5s")
		t.Setenv("CONFIG_TEST_NAME", "other")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, 5*time.Second, cfg.Interval)
		assert.Equal(t, "other", cfg.Name)
	})

	t.Run("missing required variable", func(t *testing.T) {
		var cfg testConfig
		err := config.Load(&cfg)

		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		err := config.Load[testConfig](nil)
		assert.ErrorIs(t, err, config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on error", func(t *testing.T) {
		assert.Panics(t, func() {
			var cfg testConfig
			config.MustLoad(&cfg)
		})
	})
}
