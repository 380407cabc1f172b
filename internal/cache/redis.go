package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/navrouter/internal/config"
	"github.com/vyrodovalexey/navrouter/internal/observability"
	"github.com/vyrodovalexey/navrouter/internal/retry"
)

// Circuit breaker defaults for the redis backend.
const (
	defaultBreakerThreshold = 5
	defaultBreakerTimeout   = 30 * time.Second
	scanBatchSize           = 500
)

// RedisCache is a cache backed by Redis. Calls go through a circuit breaker:
// after Threshold consecutive failures the breaker opens and calls fail fast
// with ErrUnavailable until Timeout elapses.
type RedisCache struct {
	logger     observability.Logger
	client     *redis.Client
	breaker    *gobreaker.CircuitBreaker
	keyPrefix  string
	defaultTTL time.Duration
}

func newRedisCache(cfg *config.CacheConfig, logger observability.Logger) (*RedisCache, error) {
	if cfg.Redis == nil || cfg.Redis.URL == "" {
		return nil, fmt.Errorf("%w: redis url is required", ErrInvalidConfig)
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid redis URL: %w", ErrInvalidConfig, err)
	}
	applyRedisPoolOptions(opts, cfg.Redis)

	client := redis.NewClient(opts)
	if err := pingRedis(client, cfg.Redis, logger); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	c := NewRedis(client, cfg.Redis.KeyPrefix, cfg.TTL.Duration(), cfg.Redis.CircuitBreaker, logger)

	logger.Info("redis cache initialized",
		observability.String("addr", opts.Addr),
		observability.String("keyPrefix", c.keyPrefix),
		observability.Duration("defaultTTL", c.defaultTTL))

	return c, nil
}

// NewRedis wraps an existing client. A nil breaker config uses the defaults.
func NewRedis(
	client *redis.Client,
	keyPrefix string,
	defaultTTL time.Duration,
	breakerCfg *config.CircuitBreakerConfig,
	logger observability.Logger,
) *RedisCache {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if keyPrefix == "" {
		keyPrefix = config.DefaultRedisKeyPrefix
	}

	c := &RedisCache{
		logger:     logger,
		client:     client,
		keyPrefix:  keyPrefix,
		defaultTTL: defaultTTL,
	}
	c.breaker = newBreaker("redis-cache", breakerCfg, logger)
	return c
}

func newBreaker(name string, cfg *config.CircuitBreakerConfig, logger observability.Logger) *gobreaker.CircuitBreaker {
	threshold := uint32(defaultBreakerThreshold)
	timeout := defaultBreakerTimeout
	if cfg != nil {
		if cfg.Threshold > 0 {
			threshold = safeIntToUint32(cfg.Threshold)
		}
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout.Duration()
		}
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			GetMetrics().breakerState.WithLabelValues(name).Set(float64(to))
			logger.Warn("cache circuit breaker state change",
				observability.String("name", name),
				observability.String("from", from.String()),
				observability.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil) ||
				errors.Is(err, context.Canceled)
		},
	})
}

// safeIntToUint32 safely converts int to uint32.
func safeIntToUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	if n > int(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(n) //nolint:gosec // bounds checked above
}

func applyRedisPoolOptions(opts *redis.Options, redisCfg *config.RedisCacheConfig) {
	if redisCfg.PoolSize > 0 {
		opts.PoolSize = redisCfg.PoolSize
	}
	if redisCfg.ConnectTimeout > 0 {
		opts.DialTimeout = redisCfg.ConnectTimeout.Duration()
	}
	if redisCfg.ReadTimeout > 0 {
		opts.ReadTimeout = redisCfg.ReadTimeout.Duration()
	}
	if redisCfg.WriteTimeout > 0 {
		opts.WriteTimeout = redisCfg.WriteTimeout.Duration()
	}
}

// pingRedis checks connectivity, retrying with backoff so the cache can
// start alongside redis.
func pingRedis(client *redis.Client, cfg *config.RedisCacheConfig, logger observability.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return retry.Do(ctx, "redis_connect", &retry.Config{MaxRetries: cfg.ConnectRetries}, func() error {
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		defer pingCancel()
		return client.Ping(pingCtx).Err()
	}, &retry.Options{
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			logger.Warn("redis not reachable, retrying",
				observability.Int("attempt", attempt),
				observability.Duration("backoff", backoff),
				observability.Error(err))
		},
	})
}

// execute runs fn through the circuit breaker and translates its errors.
func (c *RedisCache) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := c.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return result, err
}

func (c *RedisCache) fail(span trace.Span, op, key string, err error) error {
	GetMetrics().errorsTotal.WithLabelValues(backendRedis, op).Inc()
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
	c.logger.Warn("redis "+op+" failed",
		observability.String("key", key),
		observability.Error(err))
	return err
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, span := startSpan(ctx, "Get", backendRedis, key, trace.SpanKindClient)
	defer span.End()
	defer observeDuration(backendRedis, "get", time.Now())

	result, err := c.execute(func() (interface{}, error) {
		return c.client.Get(ctx, c.keyPrefix+key).Bytes()
	})

	switch {
	case err == nil:
		GetMetrics().hitsTotal.WithLabelValues(backendRedis).Inc()
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return result.([]byte), nil
	case errors.Is(err, redis.Nil):
		GetMetrics().missesTotal.WithLabelValues(backendRedis).Inc()
		span.SetAttributes(attribute.Bool("cache.hit", false))
		return nil, ErrCacheMiss
	default:
		return nil, c.fail(span, "get", key, err)
	}
}

// Set stores a value in Redis.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, span := startSpan(ctx, "Set", backendRedis, key, trace.SpanKindClient)
	defer span.End()
	defer observeDuration(backendRedis, "set", time.Now())

	if ttl == 0 {
		ttl = c.defaultTTL
	}
	if ttl < 0 {
		ttl = 0
	}

	_, err := c.execute(func() (interface{}, error) {
		return nil, c.client.Set(ctx, c.keyPrefix+key, value, ttl).Err()
	})
	if err != nil {
		return c.fail(span, "set", key, err)
	}
	return nil
}

// Delete removes a value from Redis.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	ctx, span := startSpan(ctx, "Delete", backendRedis, key, trace.SpanKindClient)
	defer span.End()
	defer observeDuration(backendRedis, "delete", time.Now())

	_, err := c.execute(func() (interface{}, error) {
		return nil, c.client.Del(ctx, c.keyPrefix+key).Err()
	})
	if err != nil {
		return c.fail(span, "delete", key, err)
	}
	return nil
}

// DeletePrefix removes every key starting with prefix using SCAN, so it
// never blocks the server the way KEYS would.
func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	ctx, span := startSpan(ctx, "DeletePrefix", backendRedis, prefix, trace.SpanKindClient)
	defer span.End()
	defer observeDuration(backendRedis, "delete_prefix", time.Now())

	result, err := c.execute(func() (interface{}, error) {
		removed := 0
		iter := c.client.Scan(ctx, 0, c.keyPrefix+escapeGlob(prefix)+"*", scanBatchSize).Iterator()
		batch := make([]string, 0, scanBatchSize)
		for iter.Next(ctx) {
			batch = append(batch, iter.Val())
			if len(batch) == scanBatchSize {
				n, err := c.client.Del(ctx, batch...).Result()
				if err != nil {
					return removed, err
				}
				removed += int(n)
				batch = batch[:0]
			}
		}
		if err := iter.Err(); err != nil {
			return removed, err
		}
		if len(batch) > 0 {
			n, err := c.client.Del(ctx, batch...).Result()
			if err != nil {
				return removed, err
			}
			removed += int(n)
		}
		return removed, nil
	})
	if err != nil {
		return 0, c.fail(span, "delete_prefix", prefix, err)
	}

	removed := result.(int)
	span.SetAttributes(attribute.Int("cache.removed", removed))
	return removed, nil
}

// Ping checks connectivity through the circuit breaker.
func (c *RedisCache) Ping(ctx context.Context) error {
	_, err := c.execute(func() (interface{}, error) {
		return nil, c.client.Ping(ctx).Err()
	})
	return err
}

// State returns the circuit breaker state.
func (c *RedisCache) State() gobreaker.State {
	return c.breaker.State()
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// escapeGlob escapes the characters that are special in a SCAN MATCH pattern.
func escapeGlob(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
