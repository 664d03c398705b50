package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Session  SessionConfig  `mapstructure:"session"`
	KB       KBConfig       `mapstructure:"kb"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address        string        `mapstructure:"address"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// RedisConfig holds the durable cache tier connection. An empty
// address runs the service with the volatile tier only.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig holds cache store configuration.
type CacheConfig struct {
	DurablePrefix   string         `mapstructure:"durable_prefix"`
	CleanupInterval time.Duration  `mapstructure:"cleanup_interval"`
	TTL             CacheTTLConfig `mapstructure:"ttl"`
}

// CacheTTLConfig holds the freshness windows per resource class. The
// archived/closed/active split feeds the ticket TTL rules; the rest
// are flat per-resource windows.
type CacheTTLConfig struct {
	ArchivedDetail time.Duration `mapstructure:"archived_detail"`
	ClosedDetail   time.Duration `mapstructure:"closed_detail"`
	ActiveDetail   time.Duration `mapstructure:"active_detail"`
	ArchivedList   time.Duration `mapstructure:"archived_list"`
	ClosedList     time.Duration `mapstructure:"closed_list"`
	ActiveList     time.Duration `mapstructure:"active_list"`
	Search         time.Duration `mapstructure:"search"`
	Article        time.Duration `mapstructure:"article"`
	RequestTypes   time.Duration `mapstructure:"request_types"`
}

// UpstreamConfig holds the helpdesk API connection.
type UpstreamConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Token         string        `mapstructure:"token"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	Breaker       BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig holds circuit breaker settings for the upstream
// transport.
type BreakerConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	ConsecutiveFailures uint32        `mapstructure:"consecutive_failures"`
	OpenTimeout         time.Duration `mapstructure:"open_timeout"`
}

// SessionConfig holds widget session token settings.
type SessionConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	DemoTokens    bool          `mapstructure:"demo_tokens"`
	AdminSubjects []string      `mapstructure:"admin_subjects"`
}

// KBConfig holds knowledge base search settings.
type KBConfig struct {
	MinQueryLength int `mapstructure:"min_query_length"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Set config file name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/deskgate")

	// Set defaults
	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found, use defaults and env
	}

	// Read from environment variables
	v.SetEnvPrefix("DESKGATE")
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Override with environment variables for sensitive values
	if secret := os.Getenv("DESKGATE_JWT_SECRET"); secret != "" {
		cfg.Session.JWTSecret = secret
	}
	if token := os.Getenv("DESKGATE_UPSTREAM_TOKEN"); token != "" {
		cfg.Upstream.Token = token
	}
	if password := os.Getenv("DESKGATE_REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Redis defaults
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// Cache defaults. Freshness windows widen with ticket age: closed
	// tickets change rarely, archived (previous-year) tickets are
	// effectively immutable.
	v.SetDefault("cache.durable_prefix", "deskgate_cache_")
	v.SetDefault("cache.cleanup_interval", 5*time.Minute)
	v.SetDefault("cache.ttl.archived_detail", 24*time.Hour)
	v.SetDefault("cache.ttl.closed_detail", 4*time.Hour)
	v.SetDefault("cache.ttl.active_detail", 10*time.Minute)
	v.SetDefault("cache.ttl.archived_list", 12*time.Hour)
	v.SetDefault("cache.ttl.closed_list", time.Hour)
	v.SetDefault("cache.ttl.active_list", 5*time.Minute)
	v.SetDefault("cache.ttl.search", 15*time.Minute)
	v.SetDefault("cache.ttl.article", 6*time.Hour)
	v.SetDefault("cache.ttl.request_types", 24*time.Hour)

	// Upstream defaults
	v.SetDefault("upstream.timeout", 10*time.Second)
	v.SetDefault("upstream.retry_attempts", 3)
	v.SetDefault("upstream.retry_delay", 500*time.Millisecond)
	v.SetDefault("upstream.breaker.enabled", true)
	v.SetDefault("upstream.breaker.consecutive_failures", 5)
	v.SetDefault("upstream.breaker.open_timeout", 60*time.Second)

	// Session defaults
	v.SetDefault("session.token_ttl", 12*time.Hour)
	v.SetDefault("session.demo_tokens", false)

	// KB defaults
	v.SetDefault("kb.min_query_length", 3)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
