package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr     string
	Env      string
	LogLevel string

	Database    DatabaseConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Auth        AuthConfig
	Leaderboard LeaderboardConfig
	Bootstrap   BootstrapAdmin
}

// DatabaseConfig selects PostgreSQL. An empty URL keeps every store in memory.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// RedisConfig enables the leaderboard cache and shared token revocation.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables relaying the audit outbox to a topic.
type KafkaConfig struct {
	Brokers       []string
	AuditTopic    string
	RelayInterval time.Duration
}

// DevJWTSigningKey signs tokens when JWT_SIGNING_KEY is unset. Validate
// rejects it in production.
const DevJWTSigningKey = "dev-secret-key-change-in-production"

type AuthConfig struct {
	JWTSigningKey    string
	JWTIssuer        string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	AllowAdminSignup bool

	// Failed logins per username and client address before a lockout.
	LoginMaxAttempts     int
	LoginLockoutWindow   time.Duration
	LoginLockoutDuration time.Duration
}

type LeaderboardConfig struct {
	CacheTTL time.Duration
}

// BootstrapAdmin seeds one admin account at startup when both fields are set.
type BootstrapAdmin struct {
	Username string
	Password string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	jwtSigningKey := getEnv("JWT_SIGNING_KEY", DevJWTSigningKey)

	return Server{
		Addr:     getEnv("LIFELINE_ADDR", ":8080"),
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 1),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 500*time.Millisecond),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 500*time.Millisecond),
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic:    getEnv("AUDIT_TOPIC", "lifeline.audit"),
			RelayInterval: getEnvDuration("AUDIT_RELAY_INTERVAL", 2*time.Second),
		},
		Auth: AuthConfig{
			JWTSigningKey:    jwtSigningKey,
			JWTIssuer:        getEnv("JWT_ISSUER", "lifeline"),
			AccessTokenTTL:   getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTokenTTL:  getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
			AllowAdminSignup: os.Getenv("ALLOW_ADMIN_SIGNUP") == "true",

			LoginMaxAttempts:     getEnvInt("LOGIN_MAX_ATTEMPTS", 5),
			LoginLockoutWindow:   getEnvDuration("LOGIN_LOCKOUT_WINDOW", 15*time.Minute),
			LoginLockoutDuration: getEnvDuration("LOGIN_LOCKOUT_DURATION", 15*time.Minute),
		},
		Leaderboard: LeaderboardConfig{
			CacheTTL: getEnvDuration("LEADERBOARD_CACHE_TTL", 30*time.Second),
		},
		Bootstrap: BootstrapAdmin{
			Username: os.Getenv("ADMIN_BOOTSTRAP_USERNAME"),
			Password: os.Getenv("ADMIN_BOOTSTRAP_PASSWORD"),
		},
	}
}

// IsProduction reports whether APP_ENV selects production behaviour.
func (s Server) IsProduction() bool {
	return s.Env == "production"
}

var ErrDevSigningKey = errors.New("JWT_SIGNING_KEY must be set to a private value in production")

// Validate rejects settings that are only acceptable outside production.
func (s Server) Validate() error {
	if s.IsProduction() && (s.Auth.JWTSigningKey == "" || s.Auth.JWTSigningKey == DevJWTSigningKey) {
		return ErrDevSigningKey
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
