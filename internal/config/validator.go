package config

import (
	"fmt"
	"strings"

	"github.com/vyrodovalexey/navrouter/internal/util"
)

// Validate checks the configuration and returns a *util.ValidationError
// describing every problem found, or nil. Route paths are checked by the
// router when the table is installed.
func Validate(cfg *Config) error {
	if cfg == nil {
		return util.NewConfigError("", "configuration is nil")
	}

	verr := util.NewValidationError("invalid configuration")

	validateContext(cfg.Context, verr)
	validateCache(&cfg.Cache, verr)
	validateServer(&cfg.Server, verr)
	validateObservability(&cfg.Observability, verr)

	if verr.HasErrors() {
		return verr
	}
	return nil
}

func validateContext(ctx string, verr *util.ValidationError) {
	if strings.ContainsAny(ctx, "?#") {
		verr.AddField("context", "context must not contain a query or fragment")
	}
}

func validateCache(cfg *CacheConfig, verr *util.ValidationError) {
	switch cfg.Type {
	case "", CacheTypeMemory, CacheTypeNone:
	case CacheTypeRedis:
		if cfg.Redis == nil || cfg.Redis.URL == "" {
			verr.AddField("cache.redis.url", "redis url is required for the redis cache")
		}
		if cfg.Redis != nil && cfg.Redis.CircuitBreaker != nil && cfg.Redis.CircuitBreaker.Threshold < 0 {
			verr.AddField("cache.redis.circuitBreaker.threshold", "threshold cannot be negative")
		}
	default:
		verr.AddField("cache.type", fmt.Sprintf("unknown cache type %q", cfg.Type))
	}

	if cfg.MaxEntries < 0 {
		verr.AddField("cache.maxEntries", "maxEntries cannot be negative")
	}
	if cfg.TTL < 0 {
		verr.AddField("cache.ttl", "ttl cannot be negative")
	}
}

func validateServer(cfg *ServerConfig, verr *util.ValidationError) {
	if cfg.MetricsPath != "" && !strings.HasPrefix(cfg.MetricsPath, "/") {
		verr.AddField("server.metricsPath", "metricsPath must start with /")
	}
	if cfg.Session.RateLimit < 0 {
		verr.AddField("server.session.rateLimit", "rateLimit cannot be negative")
	}
	if cfg.Session.Burst < 0 {
		verr.AddField("server.session.burst", "burst cannot be negative")
	}
}

func validateObservability(cfg *ObservabilityConfig, verr *util.ValidationError) {
	switch cfg.Logging.Format {
	case "", "json", "console":
	default:
		verr.AddField("observability.logging.format", fmt.Sprintf("unknown log format %q", cfg.Logging.Format))
	}

	rate := cfg.Tracing.SamplingRate
	if rate < 0 || rate > 1 {
		verr.AddField("observability.tracing.samplingRate", "samplingRate must be between 0 and 1")
	}
}
