package testgen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ManifestEntry records the checksums of one generated invocation.
type ManifestEntry struct {
	Slug         string `json:"slug"`
	Generator    string `json:"generator"`
	SeedHi       uint64 `json:"seed_hi"`
	SeedLo       uint64 `json:"seed_lo"`
	InputSHA256  string `json:"input_sha256"`
	AnswerSHA256 string `json:"answer_sha256"`
	InputBytes   int64  `json:"input_bytes"`
	AnswerBytes  int64  `json:"answer_bytes"`
}

// Manifest is the record of one generation run: which invocations ran, in
// order, and the exact bytes they produced. Two machines running the same
// declarations with the same seed file must produce manifests with equal
// Checksum values; comparing published manifests is the cross-machine
// determinism check.
type Manifest struct {
	RunID          string          `json:"run_id"`
	CollectionSeed uint64          `json:"collection_seed"`
	CreatedAt      int64           `json:"created_at"`
	Entries        []ManifestEntry `json:"entries"`
}

// NewManifest creates an empty manifest for a run. The run ID identifies
// this particular execution in logs and in the store; it is deliberately
// excluded from Checksum, which covers only reproducible data.
func NewManifest(collectionSeed uint64) *Manifest {
	return &Manifest{
		RunID:          uuid.NewString(),
		CollectionSeed: collectionSeed,
		CreatedAt:      time.Now().Unix(),
	}
}

// Append records one generated invocation.
func (m *Manifest) Append(entry ManifestEntry) {
	m.Entries = append(m.Entries, entry)
}

// Checksum returns a hex SHA-256 digest over the reproducible content of
// the manifest: the collection seed and, in generation order, each entry's
// slug and file digests. Run ID and timestamp are excluded.
func (m *Manifest) Checksum() string {
	h := sha256.New()
	h.Write([]byte(strconv.FormatUint(m.CollectionSeed, 10)))
	for _, e := range m.Entries {
		h.Write([]byte{0})
		h.Write([]byte(e.Slug))
		h.Write([]byte{0})
		h.Write([]byte(e.InputSHA256))
		h.Write([]byte{0})
		h.Write([]byte(e.AnswerSHA256))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Validate validates the manifest data
func (m *Manifest) Validate() error {
	if m.RunID == "" {
		return ErrManifestCorrupted.WithDetails("missing run ID")
	}
	seen := make(map[string]struct{}, len(m.Entries))
	for _, e := range m.Entries {
		if e.Slug == "" || e.InputSHA256 == "" || e.AnswerSHA256 == "" {
			return ErrManifestCorrupted.WithDetails("entry with empty slug or digest")
		}
		if _, dup := seen[e.Slug]; dup {
			return ErrManifestCorrupted.WithDetails("duplicate slug " + e.Slug)
		}
		seen[e.Slug] = struct{}{}
	}
	return nil
}

// ManifestStore persists run manifests to Redis so CI jobs on different
// machines can compare checksums without shipping the generated files.
type ManifestStore struct {
	redisClient   *redis.Client
	logger        Logger
	keyPrefix     string
	ttl           time.Duration
	retryAttempts int
	retryInterval time.Duration
}

// NewManifestStore creates a manifest store with the given manifest
// configuration. A nil config uses defaults.
func NewManifestStore(redisClient *redis.Client, cfg *ManifestConfig, logger Logger) *ManifestStore {
	if cfg == nil {
		cfg = DefaultManifestConfig()
	}
	if logger == nil {
		logger = &DefaultLogger{}
	}
	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = ManifestKeyPrefix
	}
	return &ManifestStore{
		redisClient:   redisClient,
		logger:        logger,
		keyPrefix:     keyPrefix,
		ttl:           cfg.TTL,
		retryAttempts: cfg.RetryAttempts,
		retryInterval: cfg.RetryInterval,
	}
}

// manifestKey builds the Redis key for a collection's latest manifest.
func (s *ManifestStore) manifestKey(collectionSeed uint64) string {
	return s.keyPrefix + strconv.FormatUint(collectionSeed, 10)
}

// serializeManifest serializes a manifest to JSON bytes with a size guard.
func serializeManifest(m *Manifest) ([]byte, error) {
	if m == nil {
		return nil, ErrManifestCorrupted.WithDetails("nil manifest")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, ErrSerializationFailed.WithCause(err)
	}
	if len(data) > MaxManifestSize {
		return nil, ErrManifestTooLarge.WithDetails(fmt.Sprintf(
			"%d bytes (max %d), run=%s, entries=%d", len(data), MaxManifestSize, m.RunID, len(m.Entries)))
	}
	return data, nil
}

// isRetriableRedisError checks if a Redis error is retriable
func isRetriableRedisError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	retriable := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"broken pipe",
		"i/o timeout",
		"network is unreachable",
		"redis: connection pool timeout",
	}
	for _, pattern := range retriable {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// Publish stores the manifest under the collection's key with the
// configured TTL, retrying transient Redis failures a bounded number of
// times.
func (s *ManifestStore) Publish(ctx context.Context, m *Manifest) error {
	data, err := serializeManifest(m)
	if err != nil {
		return err
	}

	key := s.manifestKey(m.CollectionSeed)
	var lastErr error
	for attempt := 0; attempt <= s.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ErrManifestPublishFailed.WithCause(ctx.Err())
			case <-time.After(s.retryInterval * time.Duration(attempt)):
			}
			s.logger.Debug("Retrying manifest publish: key=%s, attempt=%d/%d", key, attempt, s.retryAttempts)
		}

		lastErr = s.redisClient.Set(ctx, key, data, s.ttl).Err()
		if lastErr == nil {
			s.logger.Info("Manifest published: key=%s, run=%s, entries=%d, checksum=%s",
				key, m.RunID, len(m.Entries), m.Checksum())
			return nil
		}
		if !isRetriableRedisError(lastErr) {
			break
		}
	}

	s.logger.Error("Manifest publish failed: key=%s, error=%v", key, lastErr)
	return ErrManifestPublishFailed.WithDetails(key).WithCause(lastErr)
}

// Fetch loads the latest published manifest for a collection. A missing
// key returns ErrManifestNotFound.
func (s *ManifestStore) Fetch(ctx context.Context, collectionSeed uint64) (*Manifest, error) {
	key := s.manifestKey(collectionSeed)

	data, err := s.redisClient.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrManifestNotFound.WithDetails(key)
	}
	if err != nil {
		return nil, err
	}

	m := &Manifest{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, ErrManifestCorrupted.WithDetails(key).WithCause(err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
