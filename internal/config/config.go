package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port        string
	SiteURL     string
	DBDriver    string // postgres or sqlite
	DatabaseURL string
	SeedData    bool

	SessionSecret string
	JWTSecret     string
	JWTTTL        time.Duration
	AdminEmails   []string

	RateLimitBackend string // table or redis
	RedisURL         string
	VoteRateLimit    int
	VoteRateWindow   time.Duration

	LogLevel        string
	LogFormat       string
	GinMode         string
	ShutdownTimeout time.Duration
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading env vars from system")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		SiteURL:     getEnv("SITE_URL", "http://localhost:8080"),
		DBDriver:    getEnv("DB_DRIVER", "postgres"),
		DatabaseURL: getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=rebuyrnot port=5432 sslmode=disable"),
		SeedData:    getEnvBool("SEED_DATA", true),

		SessionSecret: getEnv("SESSION_SECRET", "secret_key_change_me"),
		JWTSecret:     getEnv("JWT_SECRET", "jwt_secret_change_me"),
		JWTTTL:        getEnvDuration("JWT_TTL", 7*24*time.Hour),
		AdminEmails:   splitList(getEnv("ADMIN_EMAILS", "")),

		RateLimitBackend: getEnv("RATE_LIMIT_BACKEND", "table"),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		VoteRateLimit:    getEnvInt("VOTE_RATE_LIMIT", 10),
		VoteRateWindow:   getEnvDuration("VOTE_RATE_WINDOW", time.Minute),

		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		GinMode:         getEnv("GIN_MODE", "release"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS.
func (c *Config) IsAdminEmail(email string) bool {
	for _, e := range c.AdminEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer env var, using default", "key", key, "value", v)
		return fallback
	}
	return i
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid boolean env var, using default", "key", key, "value", v)
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v)
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
