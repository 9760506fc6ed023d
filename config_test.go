package testgen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedConfig(t *testing.T) {
	t.Run("check_value_is_deterministic", func(t *testing.T) {
		assert.Equal(t, checkValue(42), checkValue(42))
		assert.NotEqual(t, checkValue(42), checkValue(43))
	})

	t.Run("generated_config_passes_its_own_check", func(t *testing.T) {
		sc := GenerateSeedConfig()

		assert.GreaterOrEqual(t, sc.Seed, uint64(SeedRangeMin))
		assert.LessOrEqual(t, sc.Seed, uint64(SeedRangeMax))
		assert.True(t, sc.CheckSeed())
	})

	t.Run("tampered_seed_fails_check", func(t *testing.T) {
		sc := &SeedConfig{Seed: 42, Check: checkValue(42)}
		require.True(t, sc.CheckSeed())

		sc.Seed = 43
		assert.False(t, sc.CheckSeed())
	})

	t.Run("zero_seed_never_passes", func(t *testing.T) {
		sc := &SeedConfig{Seed: 0, Check: checkValue(0)}
		assert.False(t, sc.CheckSeed())
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Generation:     DefaultGenerationConfig(),
			Seed:           &SeedConfig{Seed: 42, Check: checkValue(42)},
			Manifest:       DefaultManifestConfig(),
			Redis:          DefaultRedisConfig(),
			CircuitBreaker: DefaultCircuitBreakerConfig(),
		}
	}

	t.Run("default_config_is_valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("missing_sections", func(t *testing.T) {
		cfg := valid()
		cfg.Generation = nil
		assert.Error(t, cfg.Validate())

		cfg = valid()
		cfg.Seed = nil
		assert.Error(t, cfg.Validate())
	})

	t.Run("extensions_must_differ", func(t *testing.T) {
		cfg := valid()
		cfg.Generation.AnswerExtension = cfg.Generation.InputExtension
		assert.Error(t, cfg.Validate())
	})

	t.Run("empty_extensions_rejected", func(t *testing.T) {
		cfg := valid()
		cfg.Generation.InputExtension = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("manifest_publishing_requires_redis", func(t *testing.T) {
		cfg := valid()
		cfg.Manifest.Enabled = true
		cfg.Redis.Addr = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("manifest_ttl_must_be_positive", func(t *testing.T) {
		cfg := valid()
		cfg.Manifest.Enabled = true
		cfg.Manifest.TTL = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestConfigManager(t *testing.T) {
	t.Run("defaults_without_config_file", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cm := NewConfigManager()
		cfg, err := cm.LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "data/secret", cfg.Generation.OutputDir)
		assert.Equal(t, DefaultInputExtension, cfg.Generation.InputExtension)
		assert.Equal(t, DefaultAnswerExtension, cfg.Generation.AnswerExtension)
		assert.False(t, cfg.Manifest.Enabled)
		assert.Equal(t, uint64(0), cfg.Seed.Seed)
	})

	t.Run("ensure_seed_generates_and_persists", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cm := NewConfigManager()
		_, err := cm.LoadConfig()
		require.NoError(t, err)

		sc, err := cm.EnsureSeed()
		require.NoError(t, err)
		assert.True(t, sc.CheckSeed())

		// A second manager must load the exact same seed back.
		cm2 := NewConfigManager()
		cfg2, err := cm2.LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, sc.Seed, cfg2.Seed.Seed)
		assert.Equal(t, sc.Check, cfg2.Seed.Check)

		sc2, err := cm2.EnsureSeed()
		require.NoError(t, err)
		assert.Equal(t, sc.Seed, sc2.Seed)
	})

	t.Run("ensure_seed_rejects_corrupted_check", func(t *testing.T) {
		cm, err := NewConfigManagerFromConfig(&Config{
			Generation: DefaultGenerationConfig(),
			Seed:       &SeedConfig{Seed: 42, Check: 1},
		})
		require.NoError(t, err)

		_, err = cm.EnsureSeed()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrSeedCheckFailed))
	})

	t.Run("from_config_rejects_nil_and_invalid", func(t *testing.T) {
		_, err := NewConfigManagerFromConfig(nil)
		assert.Error(t, err)

		_, err = NewConfigManagerFromConfig(&Config{})
		assert.Error(t, err)
	})

	t.Run("default_manager_is_ready_to_generate", func(t *testing.T) {
		cm := NewDefaultConfigManager(42)

		require.NotNil(t, cm.GetConfig())
		assert.NoError(t, cm.GetConfig().Validate())

		sc, err := cm.EnsureSeed()
		require.NoError(t, err)
		assert.Equal(t, uint64(42), sc.Seed)
	})
}
