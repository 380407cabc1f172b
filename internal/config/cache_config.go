package config

// CacheConfig selects and configures the route lookup cache backend.
type CacheConfig struct {
	// Type is the backend: "memory", "redis" or "none".
	Type string `yaml:"type,omitempty" json:"type,omitempty"`

	// MaxEntries bounds the memory backend. Zero means unbounded.
	MaxEntries int `yaml:"maxEntries,omitempty" json:"maxEntries,omitempty"`

	// TTL is the lifetime of a cached lookup. Zero means entries never
	// expire; a route table change always invalidates them.
	TTL Duration `yaml:"ttl,omitempty" json:"ttl,omitempty"`

	// Redis configures the redis backend.
	Redis *RedisCacheConfig `yaml:"redis,omitempty" json:"redis,omitempty"`
}

// RedisCacheConfig contains Redis-specific cache configuration.
type RedisCacheConfig struct {
	// URL is the Redis connection URL.
	// Format: redis://[user:password@]host:port[/db]
	URL string `yaml:"url" json:"url"`

	// KeyPrefix is prepended to every key.
	KeyPrefix string `yaml:"keyPrefix,omitempty" json:"keyPrefix,omitempty"`

	PoolSize       int      `yaml:"poolSize,omitempty" json:"poolSize,omitempty"`
	ConnectTimeout Duration `yaml:"connectTimeout,omitempty" json:"connectTimeout,omitempty"`

	// ConnectRetries is the number of startup connection retries. Zero
	// selects the default; negative fails on the first error.
	ConnectRetries int `yaml:"connectRetries,omitempty" json:"connectRetries,omitempty"`
	ReadTimeout    Duration `yaml:"readTimeout,omitempty" json:"readTimeout,omitempty"`
	WriteTimeout   Duration `yaml:"writeTimeout,omitempty" json:"writeTimeout,omitempty"`

	// CircuitBreaker guards redis calls so an unavailable server degrades
	// lookups to uncached matching instead of stalling them.
	CircuitBreaker *CircuitBreakerConfig `yaml:"circuitBreaker,omitempty" json:"circuitBreaker,omitempty"`
}

// CircuitBreakerConfig configures the redis circuit breaker.
type CircuitBreakerConfig struct {
	// Threshold is the number of consecutive failures that opens the breaker.
	Threshold int `yaml:"threshold,omitempty" json:"threshold,omitempty"`

	// Timeout is how long the breaker stays open before probing again.
	Timeout Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}
