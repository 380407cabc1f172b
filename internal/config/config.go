package config

import "time"

// Cache backend types.
const (
	CacheTypeMemory = "memory"
	CacheTypeRedis  = "redis"
	CacheTypeNone   = "none"
)

// Config is the root configuration document.
type Config struct {
	// Context is the base path the application is mounted under, e.g.
	// "settings" or "/settings".
	Context string `yaml:"context,omitempty" json:"context,omitempty"`

	// NotFoundView names the view selected when no route matches.
	NotFoundView string `yaml:"notFoundView,omitempty" json:"notFoundView,omitempty"`

	// Routes is the ordered route table. Earlier routes win.
	Routes []RouteConfig `yaml:"routes" json:"routes"`

	Cache         CacheConfig         `yaml:"cache,omitempty" json:"cache,omitempty"`
	Server        ServerConfig        `yaml:"server,omitempty" json:"server,omitempty"`
	Observability ObservabilityConfig `yaml:"observability,omitempty" json:"observability,omitempty"`
}

// RouteConfig is a single route definition.
type RouteConfig struct {
	// Path is the route pattern, e.g. "/users/:id".
	Path string `yaml:"path" json:"path"`

	// Exact requires the pattern to match the whole pathname. When false
	// the pattern matches a pathname prefix ending at a segment boundary.
	Exact bool `yaml:"exact,omitempty" json:"exact,omitempty"`

	// View names the view rendered for this route.
	View string `yaml:"view,omitempty" json:"view,omitempty"`
}

// ServerConfig configures the HTTP and websocket surface.
type ServerConfig struct {
	Address         string        `yaml:"address,omitempty" json:"address,omitempty"`
	MetricsPath     string        `yaml:"metricsPath,omitempty" json:"metricsPath,omitempty"`
	ReadTimeout     Duration      `yaml:"readTimeout,omitempty" json:"readTimeout,omitempty"`
	ShutdownTimeout Duration      `yaml:"shutdownTimeout,omitempty" json:"shutdownTimeout,omitempty"`
	Session         SessionConfig `yaml:"session,omitempty" json:"session,omitempty"`
}

// SessionConfig configures browser bridge sessions.
type SessionConfig struct {
	// RateLimit is the sustained number of frames per second a session may send.
	RateLimit float64 `yaml:"rateLimit,omitempty" json:"rateLimit,omitempty"`

	// Burst is the maximum number of frames accepted at once.
	Burst int `yaml:"burst,omitempty" json:"burst,omitempty"`

	// WriteTimeout bounds a single websocket write.
	WriteTimeout Duration `yaml:"writeTimeout,omitempty" json:"writeTimeout,omitempty"`

	// PingInterval is the keepalive ping period.
	PingInterval Duration `yaml:"pingInterval,omitempty" json:"pingInterval,omitempty"`
}

// ObservabilityConfig groups logging and tracing settings.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty"`
	Tracing TracingConfig `yaml:"tracing,omitempty" json:"tracing,omitempty"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty" json:"level,omitempty"`
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
	Output string `yaml:"output,omitempty" json:"output,omitempty"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	OTLPEndpoint string  `yaml:"otlpEndpoint,omitempty" json:"otlpEndpoint,omitempty"`
	SamplingRate float64 `yaml:"samplingRate,omitempty" json:"samplingRate,omitempty"`
	ServiceName  string  `yaml:"serviceName,omitempty" json:"serviceName,omitempty"`
}

// Default values applied by DefaultConfig and ApplyDefaults.
const (
	DefaultAddress         = ":8080"
	DefaultMetricsPath     = "/metrics"
	DefaultSessionRate     = 20
	DefaultSessionBurst    = 40
	DefaultServiceName     = "navrouter"
	DefaultRedisKeyPrefix  = "navrouter:"
	DefaultShutdownTimeout = Duration(15 * time.Second)
	DefaultReadTimeout     = Duration(10 * time.Second)
	DefaultWriteTimeout    = Duration(5 * time.Second)
	DefaultPingInterval    = Duration(30 * time.Second)
)

// DefaultConfig returns a configuration with defaults and no routes.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Cache.Type == "" {
		c.Cache.Type = CacheTypeMemory
	}
	if c.Cache.Type == CacheTypeRedis && c.Cache.Redis != nil && c.Cache.Redis.KeyPrefix == "" {
		c.Cache.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Server.MetricsPath == "" {
		c.Server.MetricsPath = DefaultMetricsPath
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Server.Session.RateLimit == 0 {
		c.Server.Session.RateLimit = DefaultSessionRate
	}
	if c.Server.Session.Burst == 0 {
		c.Server.Session.Burst = DefaultSessionBurst
	}
	if c.Server.Session.WriteTimeout == 0 {
		c.Server.Session.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.Session.PingInterval == 0 {
		c.Server.Session.PingInterval = DefaultPingInterval
	}

	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "json"
	}
	if c.Observability.Tracing.ServiceName == "" {
		c.Observability.Tracing.ServiceName = DefaultServiceName
	}
}
