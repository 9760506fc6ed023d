package testgen

import (
	"context"

	"github.com/sony/gobreaker"
)

// Publisher is the manifest side channel the engine talks to after a
// successful run.
type Publisher interface {
	Publish(ctx context.Context, m *Manifest) error
	Fetch(ctx context.Context, collectionSeed uint64) (*Manifest, error)
}

// BreakerStore 带熔断器的清单存储
//
// Generation itself is local and deterministic; the only remote dependency
// is the manifest store. The breaker keeps a flaky Redis from stalling
// repeated generation runs behind publish retries.
type BreakerStore struct {
	store Publisher

	breaker *gobreaker.CircuitBreaker
	logger  Logger
	config  *CircuitBreakerConfig
}

// NewBreakerStore 创建带熔断器的清单存储
func NewBreakerStore(store Publisher, config *CircuitBreakerConfig, logger Logger) *BreakerStore {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}
	if logger == nil {
		logger = &DefaultLogger{}
	}

	if !config.Enabled {
		// 如果熔断器未启用，返回一个透传的包装器
		return &BreakerStore{
			store:  store,
			logger: logger,
			config: config,
		}
	}

	settings := gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// 当请求数达到最小要求且失败率超过阈值时触发熔断
			return counts.Requests >= config.MinRequests &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= config.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if config.OnStateChange && logger != nil {
				logger.Info("Circuit breaker '%s' state changed from %s to %s", name, from, to)
			}
		},
	}

	return &BreakerStore{
		store:   store,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
		config:  config,
	}
}

// executeWithBreaker 使用熔断器执行操作
func (b *BreakerStore) executeWithBreaker(operation func() (any, error)) (any, error) {
	if b.breaker == nil {
		// 熔断器未启用，直接执行
		return operation()
	}

	result, err := b.breaker.Execute(operation)
	if err != nil {
		if err == gobreaker.ErrOpenState {
			return nil, ErrCircuitBreakerOpen.WithDetails("circuit breaker is open, manifest requests are being rejected")
		}
		if err == gobreaker.ErrTooManyRequests {
			return nil, ErrCircuitBreakerOpen.WithDetails("too many requests, circuit breaker is half-open")
		}
	}

	return result, err
}

// Publish stores a manifest through the breaker.
func (b *BreakerStore) Publish(ctx context.Context, m *Manifest) error {
	_, err := b.executeWithBreaker(func() (any, error) {
		return nil, b.store.Publish(ctx, m)
	})
	return err
}

// Fetch loads a manifest through the breaker.
func (b *BreakerStore) Fetch(ctx context.Context, collectionSeed uint64) (*Manifest, error) {
	result, err := b.executeWithBreaker(func() (any, error) {
		return b.store.Fetch(ctx, collectionSeed)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Manifest), nil
}
