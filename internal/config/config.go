package config

import (
	"fmt"
	"time"

	"github.com/RishiKendai/winnow/internal/configs/env"
)

// Config holds all configuration for the application
type Config struct {
	// Winnowing defaults
	DefaultK int
	DefaultT int
	HashSize uint64

	// Limits
	CacheEnabled        bool
	CacheSize           int
	MaxCompareDocuments int
	MaxDocumentBytes    int

	// MongoDB
	MongoURI    string
	MongoDBName string

	// Redis
	RedisHost               string
	RedisPassword           string
	RedisStreamKey          string
	RedisConsumerGroup      string
	RedisDeadLetterKey      string
	StreamRetentionDuration time.Duration
	MaxRetries              int

	// JWT
	JWTSecret string
	JWTIssuer string

	// Rate Limiting
	RateLimitRPS float64

	// Concurrency
	MaxConcurrentCompute int
	Workers              int

	// Computation
	ComputationTimeout time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// Server
	ServerPort  string
	MetricsPort string
}

func Load() (*Config, error) {
	cfg := &Config{}

	// Winnowing defaults
	cfg.DefaultK = env.GetEnvInt("DEFAULT_K", 5)
	cfg.DefaultT = env.GetEnvInt("DEFAULT_T", 8)
	cfg.HashSize = env.GetEnvUint64("HASH_SIZE", 1<<20)

	// Limits
	cfg.CacheEnabled = env.GetEnvBool("CACHE_ENABLED", true)
	cfg.CacheSize = env.GetEnvInt("CACHE_SIZE", 512)
	cfg.MaxCompareDocuments = env.GetEnvInt("MAX_COMPARE_DOCUMENTS", 32)
	cfg.MaxDocumentBytes = env.GetEnvInt("MAX_DOCUMENT_BYTES", 1<<20)

	// MongoDB
	cfg.MongoURI = env.GetEnv("MONGO_URI", "")
	cfg.MongoDBName = env.GetEnv("MONGO_DB_NAME", "winnow")

	// Redis
	cfg.RedisHost = env.GetEnv("REDIS_HOST", "localhost:6379")
	cfg.RedisPassword = env.GetEnv("REDIS_PASSWORD", "")
	cfg.RedisStreamKey = env.GetEnv("REDIS_STREAM_KEY", "winnow:stream")
	cfg.RedisConsumerGroup = env.GetEnv("REDIS_CONSUMER_GROUP", "winnow:group")
	cfg.RedisDeadLetterKey = env.GetEnv("REDIS_DEAD_LETTER_KEY", "winnow:dlq")
	retentionHours := env.GetEnvInt("STREAM_RETENTION_DURATION", 24)
	cfg.StreamRetentionDuration = time.Duration(retentionHours) * time.Hour
	cfg.MaxRetries = env.GetEnvInt("MAX_RETRIES", 3)

	// JWT
	cfg.JWTSecret = env.GetEnv("JWT_SECRET", "")
	cfg.JWTIssuer = env.GetEnv("JWT_ISSUER", "winnow")

	// Rate Limiting
	cfg.RateLimitRPS = env.GetEnvFloat("RATE_LIMIT_RPS", 10.0)

	// Concurrency
	cfg.MaxConcurrentCompute = env.GetEnvInt("MAX_CONCURRENT_COMPUTE", 5)
	cfg.Workers = env.GetEnvInt("WORKERS", 0)

	// Computation
	timeoutMinutes := env.GetEnvInt("COMPUTATION_TIMEOUT_MINUTES", 5)
	cfg.ComputationTimeout = time.Duration(timeoutMinutes) * time.Minute

	// Logging
	cfg.LogLevel = env.GetEnv("LOG_LEVEL", "info")
	cfg.LogFormat = env.GetEnv("LOG_FORMAT", "json")

	// Server
	cfg.ServerPort = env.GetEnv("SERVER_PORT", "8080")
	cfg.MetricsPort = env.GetEnv("METRICS_PORT", "2112")

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DefaultK <= 0 {
		return fmt.Errorf("DEFAULT_K must be greater than 0")
	}
	if c.DefaultT < c.DefaultK {
		return fmt.Errorf("DEFAULT_T must be greater than or equal to DEFAULT_K")
	}
	if c.HashSize == 0 || c.HashSize > 1<<32 {
		return fmt.Errorf("HASH_SIZE must be in (0, 4294967296]")
	}
	if c.CacheEnabled && c.CacheSize <= 0 {
		return fmt.Errorf("CACHE_SIZE must be greater than 0")
	}
	if c.MaxCompareDocuments <= 0 {
		return fmt.Errorf("MAX_COMPARE_DOCUMENTS must be greater than 0")
	}
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.MongoDBName == "" {
		return fmt.Errorf("MONGO_DB_NAME is required")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.MaxConcurrentCompute <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_COMPUTE must be greater than 0")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES must not be negative")
	}
	if c.StreamRetentionDuration <= 0 {
		return fmt.Errorf("STREAM_RETENTION_DURATION must be greater than 0")
	}
	return nil
}
