package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App        AppConfig
	Mongo      MongoConfig
	AuditDB    AuditDBConfig
	Redis      RedisConfig
	Logger     LoggerConfig
	Auth       AuthConfig
	AI         AIConfig
	Moderation ModerationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// MongoConfig holds document store connection values.
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout int
}

// AuditDBConfig holds the audit-log Postgres connection values. Audit
// logging is disabled when DSN is empty.
type AuditDBConfig struct {
	DSN           string
	MaxConns      int32
	MinConns      int32
	RunMigrations bool
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// AIConfig points at the generative-text completion endpoint.
type AIConfig struct {
	Endpoint       string
	APIKey         string
	Model          string
	TimeoutSeconds int
	RetryBackoffMs int
}

// ModerationConfig tunes the analysis pipeline.
type ModerationConfig struct {
	QueueSize       int
	Workers         int
	CacheTTLSeconds int
}

// Load reads configuration from environment variables, applying defaults
// where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "moderation-panel"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Mongo: MongoConfig{
			URI:            getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
			Database:       getEnv("MONGO_DATABASE", "moderation"),
			ConnectTimeout: getEnvAsInt("MONGO_CONNECT_TIMEOUT_SECONDS", 5),
		},
		AuditDB: AuditDBConfig{
			DSN:           os.Getenv("AUDIT_POSTGRES_DSN"),
			MaxConns:      int32(getEnvAsInt("AUDIT_POSTGRES_MAX_CONNS", 5)),
			MinConns:      int32(getEnvAsInt("AUDIT_POSTGRES_MIN_CONNS", 1)),
			RunMigrations: getEnvAsBool("AUDIT_POSTGRES_RUN_MIGRATIONS", true),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		AI: AIConfig{
			Endpoint:       getEnv("AI_ENDPOINT", ""),
			APIKey:         os.Getenv("AI_API_KEY"),
			Model:          getEnv("AI_MODEL", "gpt-4o-mini"),
			TimeoutSeconds: getEnvAsInt("AI_TIMEOUT_SECONDS", 30),
			RetryBackoffMs: getEnvAsInt("AI_RETRY_BACKOFF_MS", 2000),
		},
		Moderation: ModerationConfig{
			QueueSize:       getEnvAsInt("ANALYSIS_QUEUE_SIZE", 64),
			Workers:         getEnvAsInt("ANALYSIS_WORKERS", 2),
			CacheTTLSeconds: getEnvAsInt("SETTINGS_CACHE_TTL_SECONDS", 30),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the per-call AI request timeout.
func (a AIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// RetryBackoff returns the delay before the single retry.
func (a AIConfig) RetryBackoff() time.Duration {
	if a.RetryBackoffMs <= 0 {
		return 2 * time.Second
	}
	return time.Duration(a.RetryBackoffMs) * time.Millisecond
}

// CacheTTL returns the settings/catalog cache lifetime.
func (m ModerationConfig) CacheTTL() time.Duration {
	if m.CacheTTLSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(m.CacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
