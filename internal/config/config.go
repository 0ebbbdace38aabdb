package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Cache       CacheConfig
	Auth        AuthConfig
	Transcript  TranscriptConfig
	Tokens      TokensConfig
	LLM         LLMConfig
	Logging     LoggingConfig
	Metrics     MetricsConfig
	Tracing     TracingConfig
	RateLimit   RateLimitConfig
	Storage     StorageConfig
	Queue       QueueConfig
	Webhook     WebhookConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	// Enabled selects the Postgres ledger. Disabled falls back to an
	// in-process ledger that forgets everything on restart.
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
	// EnsureSchema creates the ledger tables at startup when missing
	EnsureSchema bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig selects and tunes the transcript cache
type CacheConfig struct {
	Backend       string // memory, redis
	SweepInterval time.Duration
}

// AuthConfig holds identity provider configuration
type AuthConfig struct {
	Mode               string // jwt, supabase
	JWTSecret          string
	SupabaseURL        string
	SupabaseServiceKey string
}

// TranscriptConfig holds transcript provider and cache lifetime configuration
type TranscriptConfig struct {
	TTLMinutes int
	APIKey     string
	APIHost    string
	APIURL     string
	Language   string
	Timeout    time.Duration
}

// TTL returns the cache lifetime of a transcript
func (c TranscriptConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// TokensConfig holds token metering configuration
type TokensConfig struct {
	PerVideo int
	// InitialBalance provisions unknown users on the in-process ledger
	InitialBalance int
}

// LLMConfig holds content generation configuration
type LLMConfig struct {
	Provider     string
	MaxAttempts  int
	InitialDelay time.Duration
	Gemini       ProviderConfig
	Groq         ProviderConfig
}

// ProviderConfig holds the settings of one content generation backend
type ProviderConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	APIURL      string
	Timeout     time.Duration
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level      string
	Format     string
	Output     string
	MaxSizeMB  int
	MaxBackups int
}

// MetricsConfig holds Prometheus exporter configuration
type MetricsConfig struct {
	Enabled bool
	Port    int
}

// TracingConfig holds Jaeger configuration
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
}

// RateLimitConfig holds per-client request limits
type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

// StorageConfig holds transcript archive configuration
type StorageConfig struct {
	Enabled         bool
	ReadThrough     bool
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	UseSSL          bool
}

// QueueConfig holds usage event queue configuration
type QueueConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Vhost    string
}

// WebhookConfig holds the usage event webhook configuration
type WebhookConfig struct {
	Enabled bool
	URL     string
	Secret  string
	Events  []string
	Timeout time.Duration
}

// IsProduction reports whether error details should be hidden from clients
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads configuration from file and environment variables.
// An empty path loads defaults and environment only.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	setDefaults(v)
	bindEnv(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.Transcript.TTLMinutes <= 0 {
		return errors.New("transcript.ttlMinutes must be positive")
	}
	if c.Webhook.Enabled && c.Webhook.URL == "" {
		return errors.New("webhook.url is required when webhooks are enabled")
	}
	if c.Tokens.PerVideo < 0 {
		return errors.New("tokens.perVideo must not be negative")
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Auth.Mode {
	case "jwt", "supabase":
	default:
		return fmt.Errorf("unknown auth mode %q", c.Auth.Mode)
	}
	return nil
}

// bindEnv maps the flat environment names used by deployments onto config keys
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("environment", "APP_ENV")
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("transcript.ttlMinutes", "TRANSCRIPT_TTL_MINUTES")
	_ = v.BindEnv("transcript.apiKey", "RAPIDAPI_KEY")
	_ = v.BindEnv("tokens.perVideo", "TOKENS_PER_VIDEO")
	_ = v.BindEnv("llm.provider", "LLM_PROVIDER")
	_ = v.BindEnv("llm.gemini.apiKey", "GEMINI_API_KEY")
	_ = v.BindEnv("llm.groq.apiKey", "GROQ_API_KEY")
	_ = v.BindEnv("auth.mode", "AUTH_MODE")
	_ = v.BindEnv("auth.jwtSecret", "SUPABASE_JWT_SECRET")
	_ = v.BindEnv("auth.supabaseURL", "SUPABASE_URL")
	_ = v.BindEnv("auth.supabaseServiceKey", "SUPABASE_SERVICE_KEY")
	_ = v.BindEnv("database.enabled", "DB_ENABLED")
	_ = v.BindEnv("database.host", "DB_HOST")
	_ = v.BindEnv("database.password", "DB_PASSWORD")
	_ = v.BindEnv("redis.host", "REDIS_HOST")
	_ = v.BindEnv("webhook.url", "USAGE_WEBHOOK_URL")
	_ = v.BindEnv("webhook.secret", "USAGE_WEBHOOK_SECRET")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	// Server defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.readTimeout", "30s")
	v.SetDefault("server.writeTimeout", "120s")
	v.SetDefault("server.shutdownTimeout", "10s")
	v.SetDefault("server.allowedOrigins", []string{"*"})

	// Database defaults
	v.SetDefault("database.enabled", true)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "tubenotes")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxConns", 25)
	v.SetDefault("database.minConns", 5)
	v.SetDefault("database.ensureSchema", false)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Cache defaults
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.sweepInterval", "5m")

	// Auth defaults
	v.SetDefault("auth.mode", "jwt")

	// Transcript defaults
	v.SetDefault("transcript.ttlMinutes", 30)
	v.SetDefault("transcript.apiHost", "youtube-transcript3.p.rapidapi.com")
	v.SetDefault("transcript.apiURL", "https://youtube-transcript3.p.rapidapi.com/api/transcript-with-url")
	v.SetDefault("transcript.language", "en")
	v.SetDefault("transcript.timeout", "10s")

	// Token defaults
	v.SetDefault("tokens.perVideo", 10)
	v.SetDefault("tokens.initialBalance", 100)

	// LLM defaults
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.maxAttempts", 3)
	v.SetDefault("llm.initialDelay", "1s")
	v.SetDefault("llm.gemini.model", "gemini-1.5-flash")
	v.SetDefault("llm.gemini.maxTokens", 8192)
	v.SetDefault("llm.gemini.temperature", 0.2)
	v.SetDefault("llm.gemini.apiURL", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("llm.gemini.timeout", "60s")
	v.SetDefault("llm.groq.model", "llama-3.3-70b-versatile")
	v.SetDefault("llm.groq.maxTokens", 4096)
	v.SetDefault("llm.groq.temperature", 0.7)
	v.SetDefault("llm.groq.apiURL", "https://api.groq.com/openai/v1/chat/completions")
	v.SetDefault("llm.groq.timeout", "60s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.maxSizeMB", 100)
	v.SetDefault("logging.maxBackups", 5)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	// Tracing defaults
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.serviceName", "tubenotes-api")
	v.SetDefault("tracing.endpoint", "http://localhost:14268/api/traces")

	// Rate limit defaults: 100 requests per 15 minutes
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requests", 100)
	v.SetDefault("rateLimit.window", "15m")

	// Storage defaults
	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.readThrough", false)
	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.accessKeyID", "minioadmin")
	v.SetDefault("storage.secretAccessKey", "minioadmin")
	v.SetDefault("storage.bucketName", "transcripts")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.useSSL", false)

	// Queue defaults
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.host", "localhost")
	v.SetDefault("queue.port", 5672)
	v.SetDefault("queue.user", "guest")
	v.SetDefault("queue.password", "guest")
	v.SetDefault("queue.vhost", "/")

	// Webhook defaults
	v.SetDefault("webhook.enabled", false)
	v.SetDefault("webhook.events", []string{"usage.completed", "usage.failed"})
	v.SetDefault("webhook.timeout", "30s")
}
