package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionguard/pkg/config"
)

type sampleConfig struct {
	Name    string        `env:"CFG_TEST_NAME" envDefault:"default"`
	TTL     time.Duration `env:"CFG_TEST_TTL" envDefault:"24h"`
	Enabled bool          `env:"CFG_TEST_ENABLED" envDefault:"true"`
}

type requiredConfig struct {
	Value string `env:"CFG_TEST_REQUIRED,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg sampleConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "default", cfg.Name)
		assert.Equal(t, 24*time.Hour, cfg.TTL)
		assert.True(t, cfg.Enabled)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("CFG_TEST_NAME", "custom")
		t.Setenv("CFG_TEST_TTL", "90m")
		t.Setenv("CFG_TEST_ENABLED", "false")

		var cfg sampleConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "custom", cfg.Name)
		assert.Equal(t, 90*time.Minute, cfg.TTL)
		assert.False(t, cfg.Enabled)
	})

	t.Run("prefix", func(t *testing.T) {
		t.Setenv("APP_CFG_TEST_NAME", "prefixed")

		var cfg sampleConfig
		require.NoError(t, config.Load(&cfg, config.WithPrefix("APP_")))
		assert.Equal(t, "prefixed", cfg.Name)
	})

	t.Run("missing required", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		var cfg *sampleConfig
		assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	})
}

func TestMustLoad_Panics(t *testing.T) {
	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg)
	})
}
