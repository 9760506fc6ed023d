package testgen

import "time"

const (
	// DefaultConfigName is the default name of the collection config file
	DefaultConfigName = "testgen.toml"

	// DefaultInputExtension is the file extension for generated inputs
	DefaultInputExtension = ".in"

	// DefaultAnswerExtension is the file extension for generated answers
	DefaultAnswerExtension = ".ans"

	// DefaultDescExtension is the file extension for optional descriptions
	DefaultDescExtension = ".desc"

	// DefaultRepeat is the default repeat count for a registered generator
	DefaultRepeat = 1

	// MaxRepeat is the maximum repeat count allowed for a single generator
	MaxRepeat = 10_000

	// SeedRangeMin is the lower bound of the root seed range
	SeedRangeMin = 1

	// SeedRangeMax is the upper bound of the root seed range
	SeedRangeMax = 1_000_000

	// OutputDirPerm is the permission used when creating output directories
	OutputDirPerm = 0o755

	// OutputFilePerm is the permission used when creating output files
	OutputFilePerm = 0o644
)

const (
	// ManifestKeyPrefix is the prefix for Redis manifest keys
	ManifestKeyPrefix = "testgen:manifest:"

	// DefaultManifestTTL is the default TTL for published manifests
	DefaultManifestTTL = 24 * time.Hour

	// DefaultPublishRetryAttempts is the default number of publish retries
	DefaultPublishRetryAttempts = 3

	// DefaultPublishRetryInterval is the default interval between publish retries
	DefaultPublishRetryInterval = 100 * time.Millisecond

	// MaxManifestSize is the maximum allowed size for a serialized manifest (10MB)
	MaxManifestSize = 10 * 1024 * 1024
)

const (
	// DefaultCircuitBreakerName is the default name for the manifest breaker
	DefaultCircuitBreakerName = "testgen-manifest"

	// DefaultCircuitBreakerMaxRequests is the default max requests in half-open state
	DefaultCircuitBreakerMaxRequests = 3

	// DefaultCircuitBreakerInterval is the default counting interval
	DefaultCircuitBreakerInterval = 60 * time.Second

	// DefaultCircuitBreakerTimeout is the default open-state timeout
	DefaultCircuitBreakerTimeout = 30 * time.Second

	// DefaultCircuitBreakerFailureRatio is the default failure ratio to trip
	DefaultCircuitBreakerFailureRatio = 0.6

	// DefaultCircuitBreakerMinRequests is the default minimum requests before tripping
	DefaultCircuitBreakerMinRequests = 3
)

const (
	DefaultRedisAddr         = "localhost:6379"
	DefaultRedisPassword     = ""
	DefaultRedisDB           = 0
	DefaultRedisPoolSize     = 10
	DefaultRedisMinIdleConns = 2
	DefaultRedisMaxRetries   = 3
	DefaultRedisDialTimeout  = 5 * time.Second
	DefaultRedisReadTimeout  = 3 * time.Second
	DefaultRedisWriteTimeout = 3 * time.Second
	DefaultRedisPoolTimeout  = 4 * time.Second
)
