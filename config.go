package testgen

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
)

// Config is the full configuration of a test collection.
type Config struct {
	// Generation output conventions
	Generation *GenerationConfig `mapstructure:"generation"`

	// Root seed of the collection
	Seed *SeedConfig `mapstructure:"seed"`

	// Manifest publishing
	Manifest *ManifestConfig `mapstructure:"manifest"`

	// Redis connection (only used when manifest publishing is enabled)
	Redis *RedisConfig `mapstructure:"redis"`

	// Circuit breaker around the manifest store
	CircuitBreaker *CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Generation == nil || c.Seed == nil {
		return ErrConfigInvalid.WithDetails("generation and seed sections are required")
	}
	if c.Generation.InputExtension == "" || c.Generation.AnswerExtension == "" {
		return ErrConfigInvalid.WithDetails("input and answer extensions cannot be empty")
	}
	if c.Generation.InputExtension == c.Generation.AnswerExtension {
		return ErrConfigInvalid.WithDetails("input and answer extensions must differ")
	}
	if c.Manifest != nil && c.Manifest.Enabled {
		if c.Redis == nil || c.Redis.Addr == "" {
			return ErrConfigInvalid.WithDetails("manifest publishing requires a redis address")
		}
		if c.Manifest.TTL <= 0 {
			return ErrConfigInvalid.WithDetails("manifest TTL must be positive")
		}
		if c.Manifest.RetryAttempts < 0 {
			return ErrConfigInvalid.WithDetails("manifest retry attempts cannot be negative")
		}
	}
	return nil
}

// GenerationConfig describes the on-disk output layout.
type GenerationConfig struct {
	OutputDir       string `mapstructure:"output_dir"`
	InputExtension  string `mapstructure:"input_extension"`
	AnswerExtension string `mapstructure:"answer_extension"`
	DescExtension   string `mapstructure:"desc_extension"`
	WriteDesc       bool   `mapstructure:"write_desc"`
}

// DefaultGenerationConfig returns the default output layout.
func DefaultGenerationConfig() *GenerationConfig {
	return &GenerationConfig{
		OutputDir:       "data/secret",
		InputExtension:  DefaultInputExtension,
		AnswerExtension: DefaultAnswerExtension,
		DescExtension:   DefaultDescExtension,
		WriteDesc:       true,
	}
}

// SeedConfig holds the collection's persisted root seed together with a
// check value derived from it. Generation requires the same seed file to
// reproduce the same bytes, so the check value guards against a hand-edited
// or corrupted seed.
type SeedConfig struct {
	Seed  uint64 `mapstructure:"seed"`
	Check uint64 `mapstructure:"check"`
}

// checkValue derives the expected check value: the first ranged draw of a
// source seeded with the root seed.
func checkValue(seed uint64) uint64 {
	rnd := NewRand(Seed{Hi: seed, Lo: seed})
	return uint64(rnd.IntRange(SeedRangeMin, SeedRangeMax))
}

// CheckSeed reports whether the stored check value matches the seed.
func (s *SeedConfig) CheckSeed() bool {
	return s.Seed != 0 && s.Check == checkValue(s.Seed)
}

// GenerateSeedConfig creates a fresh random seed config. This is the one
// intentionally nondeterministic operation in the package: it runs once,
// and the result is persisted so every later run derives from it.
func GenerateSeedConfig() *SeedConfig {
	var buf [8]byte
	var seed uint64
	if _, err := rand.Read(buf[:]); err == nil {
		seed = binary.BigEndian.Uint64(buf[:])%(SeedRangeMax-SeedRangeMin) + SeedRangeMin
	} else {
		// crypto/rand failing is effectively fatal elsewhere; fall back to
		// a fixed seed rather than time so behavior stays explainable.
		seed = SeedRangeMin
	}
	return &SeedConfig{Seed: seed, Check: checkValue(seed)}
}

// ManifestConfig controls manifest publishing after a successful run.
type ManifestConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	KeyPrefix     string        `mapstructure:"key_prefix"`
	TTL           time.Duration `mapstructure:"ttl"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
}

// DefaultManifestConfig returns the default manifest configuration with
// publishing disabled.
func DefaultManifestConfig() *ManifestConfig {
	return &ManifestConfig{
		Enabled:       false,
		KeyPrefix:     ManifestKeyPrefix,
		TTL:           DefaultManifestTTL,
		RetryAttempts: DefaultPublishRetryAttempts,
		RetryInterval: DefaultPublishRetryInterval,
	}
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	PoolSize     int `mapstructure:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns"`
	MaxRetries   int `mapstructure:"max_retries"`

	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
}

// DefaultRedisConfig 返回默认的Redis配置
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:         DefaultRedisAddr,
		Password:     DefaultRedisPassword,
		DB:           DefaultRedisDB,
		PoolSize:     DefaultRedisPoolSize,
		MinIdleConns: DefaultRedisMinIdleConns,
		MaxRetries:   DefaultRedisMaxRetries,
		DialTimeout:  DefaultRedisDialTimeout,
		ReadTimeout:  DefaultRedisReadTimeout,
		WriteTimeout: DefaultRedisWriteTimeout,
		PoolTimeout:  DefaultRedisPoolTimeout,
	}
}

// CircuitBreakerConfig 熔断器配置
type CircuitBreakerConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Name          string        `mapstructure:"name"`
	MaxRequests   uint32        `mapstructure:"max_requests"`
	Interval      time.Duration `mapstructure:"interval"`
	Timeout       time.Duration `mapstructure:"timeout"`
	FailureRatio  float64       `mapstructure:"failure_ratio"`
	MinRequests   uint32        `mapstructure:"min_requests"`
	OnStateChange bool          `mapstructure:"on_state_change"`
}

// DefaultCircuitBreakerConfig 返回默认熔断器配置
func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		Enabled:       true,
		Name:          DefaultCircuitBreakerName,
		MaxRequests:   DefaultCircuitBreakerMaxRequests,
		Interval:      DefaultCircuitBreakerInterval,
		Timeout:       DefaultCircuitBreakerTimeout,
		FailureRatio:  DefaultCircuitBreakerFailureRatio,
		MinRequests:   DefaultCircuitBreakerMinRequests,
		OnStateChange: true,
	}
}

// ConfigManager 配置管理器
type ConfigManager struct {
	viper  *viper.Viper
	config *Config
}

// NewConfigManager 创建配置管理器
func NewConfigManager() *ConfigManager {
	v := viper.New()

	v.SetConfigName("testgen")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TESTGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &ConfigManager{
		viper: v,
	}
}

// LoadConfig 加载配置
func (cm *ConfigManager) LoadConfig() (*Config, error) {
	cm.setDefaults()

	if err := cm.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// 配置文件不存在时使用默认配置
	}

	config := &Config{}
	if err := cm.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cm.config = config
	return config, nil
}

// setDefaults 设置默认配置值
func (cm *ConfigManager) setDefaults() {
	cm.viper.SetDefault("generation.output_dir", "data/secret")
	cm.viper.SetDefault("generation.input_extension", DefaultInputExtension)
	cm.viper.SetDefault("generation.answer_extension", DefaultAnswerExtension)
	cm.viper.SetDefault("generation.desc_extension", DefaultDescExtension)
	cm.viper.SetDefault("generation.write_desc", true)

	cm.viper.SetDefault("seed.seed", 0)
	cm.viper.SetDefault("seed.check", 0)

	cm.viper.SetDefault("manifest.enabled", false)
	cm.viper.SetDefault("manifest.key_prefix", ManifestKeyPrefix)
	cm.viper.SetDefault("manifest.ttl", "24h")
	cm.viper.SetDefault("manifest.retry_attempts", DefaultPublishRetryAttempts)
	cm.viper.SetDefault("manifest.retry_interval", "100ms")

	cm.viper.SetDefault("redis.addr", DefaultRedisAddr)
	cm.viper.SetDefault("redis.password", DefaultRedisPassword)
	cm.viper.SetDefault("redis.db", DefaultRedisDB)
	cm.viper.SetDefault("redis.pool_size", DefaultRedisPoolSize)
	cm.viper.SetDefault("redis.min_idle_conns", DefaultRedisMinIdleConns)
	cm.viper.SetDefault("redis.max_retries", DefaultRedisMaxRetries)
	cm.viper.SetDefault("redis.dial_timeout", "5s")
	cm.viper.SetDefault("redis.read_timeout", "3s")
	cm.viper.SetDefault("redis.write_timeout", "3s")
	cm.viper.SetDefault("redis.pool_timeout", "4s")

	cm.viper.SetDefault("circuit_breaker.enabled", true)
	cm.viper.SetDefault("circuit_breaker.name", DefaultCircuitBreakerName)
	cm.viper.SetDefault("circuit_breaker.max_requests", DefaultCircuitBreakerMaxRequests)
	cm.viper.SetDefault("circuit_breaker.interval", "60s")
	cm.viper.SetDefault("circuit_breaker.timeout", "30s")
	cm.viper.SetDefault("circuit_breaker.failure_ratio", DefaultCircuitBreakerFailureRatio)
	cm.viper.SetDefault("circuit_breaker.min_requests", DefaultCircuitBreakerMinRequests)
	cm.viper.SetDefault("circuit_breaker.on_state_change", true)
}

// EnsureSeed makes sure the collection has a verified root seed.
//
// A missing seed (zero) is generated once and persisted back to the config
// file so later runs reproduce the same bytes. A present seed must match
// its check value; a mismatch means the seed file was edited or corrupted
// and deterministic regeneration is no longer possible.
func (cm *ConfigManager) EnsureSeed() (*SeedConfig, error) {
	if cm.config == nil {
		if _, err := cm.LoadConfig(); err != nil {
			return nil, err
		}
	}

	if cm.config.Seed.Seed == 0 {
		sc := GenerateSeedConfig()
		cm.viper.Set("seed.seed", sc.Seed)
		cm.viper.Set("seed.check", sc.Check)

		target := cm.viper.ConfigFileUsed()
		if target == "" {
			target = DefaultConfigName
		}
		if err := cm.viper.WriteConfigAs(target); err != nil {
			return nil, fmt.Errorf("failed to persist seed config: %w", err)
		}

		cm.config.Seed = sc
		return sc, nil
	}

	if !cm.config.Seed.CheckSeed() {
		return nil, ErrSeedCheckFailed.WithDetails(fmt.Sprintf("seed=%d", cm.config.Seed.Seed))
	}
	return cm.config.Seed, nil
}

// WatchConfig 监听配置变化
func (cm *ConfigManager) WatchConfig(callback func(*Config)) error {
	cm.viper.WatchConfig()
	cm.viper.OnConfigChange(func(e fsnotify.Event) {
		config := &Config{}
		if err := cm.viper.Unmarshal(config); err != nil {
			// 记录错误但不中断服务
			return
		}

		if err := config.Validate(); err != nil {
			return
		}

		cm.config = config
		if callback != nil {
			callback(config)
		}
	})

	return nil
}

// GetConfig 获取当前配置
func (cm *ConfigManager) GetConfig() *Config { return cm.config }

// ReloadConfig 重新加载配置
func (cm *ConfigManager) ReloadConfig() (*Config, error) { return cm.LoadConfig() }

// NewDefaultConfigManager creates a config manager preloaded with default
// configuration and a fixed, already-checked seed. Useful in tests and in
// scripts that manage their own seed.
func NewDefaultConfigManager(seed uint64) *ConfigManager {
	cm := NewConfigManager()
	cm.setDefaults()

	cm.config = &Config{
		Generation:     DefaultGenerationConfig(),
		Seed:           &SeedConfig{Seed: seed, Check: checkValue(seed)},
		Manifest:       DefaultManifestConfig(),
		Redis:          DefaultRedisConfig(),
		CircuitBreaker: DefaultCircuitBreakerConfig(),
	}
	return cm
}

// NewConfigManagerFromConfig wraps an already-built Config.
func NewConfigManagerFromConfig(config *Config) (*ConfigManager, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cm := NewConfigManager()
	cm.config = config
	return cm, nil
}

// NewRedisClientFromConfig 从配置创建Redis客户端
func NewRedisClientFromConfig(config *RedisConfig) *redis.Client {
	if config == nil {
		config = DefaultRedisConfig()
	}

	return redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		PoolTimeout:  config.PoolTimeout,
	})
}
