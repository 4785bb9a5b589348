package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type Config struct {
	Port string

	// DBDriver is "postgres" (lib/pq, default) or "pgx" (jackc/pgx stdlib).
	DBDriver string
	DBHost   string
	DBPort   string
	DBName   string
	DBUser   string
	DBPass   string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int
	// DBMigrate applies the embedded migrations at startup (default true).
	DBMigrate bool

	JWTSecret string
	// JWTAlgorithm is the HMAC signing method name (HS256, HS384 or HS512). Set via ALGORITHM.
	JWTAlgorithm string
	// TokenExpireMinutes is the access token lifetime. Set via ACCESS_TOKEN_EXPIRE_MINUTES.
	TokenExpireMinutes int

	// PostMaxLength bounds post text, counted in characters.
	PostMaxLength int

	// CacheTTLSeconds is how long a user's post list stays cached.
	CacheTTLSeconds int
	// CacheBackend is "memory" (default) or "redis".
	CacheBackend string
	// CacheSweepSpec is the cron spec for purging expired in-memory cache entries.
	CacheSweepSpec string
	RedisAddr      string
	RedisPassword  string

	// Env is "dev" (default) or "prod".
	Env string

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string

	// CORSAllowedOrigins is set via CORS_ALLOWED_ORIGINS (comma-separated). Empty means same-origin only.
	CORSAllowedOrigins []string

	// errs collects values that were present but could not be parsed.
	errs []string
}

func Load() Config {
	cfg := Config{
		Port: getEnv("PORT", "8080"),

		DBDriver: getEnv("DB_DRIVER", "postgres"),
		DBHost:   getEnv("DB_HOST", "localhost"),
		DBPort:   getEnv("DB_PORT", "5432"),
		DBName:   getEnv("DB_NAME", "postboard"),
		DBUser:   getEnv("DB_USER", "postboard"),
		DBPass:   getEnv("DB_PASS", "postboard"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBMigrate:      getEnv("DB_MIGRATE", "true") == "true",

		JWTSecret:    os.Getenv("JWT_SECRET"),
		JWTAlgorithm: getEnv("ALGORITHM", "HS256"),

		CacheBackend:   getEnv("CACHE_BACKEND", "memory"),
		CacheSweepSpec: getEnv("CACHE_SWEEP_SPEC", "@every 1m"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),

		Env: getEnv("ENV", "dev"),

		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		LogFormat: getEnv("LOG_FORMAT", "text"),

		CORSAllowedOrigins: parseCORSOrigins(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}

	// Core keys are parsed strictly: a malformed value is a startup error, not a silent default.
	cfg.TokenExpireMinutes = cfg.strictInt("ACCESS_TOKEN_EXPIRE_MINUTES", 0)
	cfg.PostMaxLength = cfg.strictInt("POST_MAX_LENGTH", 255)
	cfg.CacheTTLSeconds = cfg.strictInt("CACHE_TTL_SECONDS", 300)

	return cfg
}

// Validate reports every missing or invalid required value at once.
func (c Config) Validate() error {
	problems := append([]string(nil), c.errs...)

	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		problems = append(problems, fmt.Sprintf("ALGORITHM %q is not supported (use HS256, HS384 or HS512)", c.JWTAlgorithm))
	}
	if c.TokenExpireMinutes <= 0 {
		problems = append(problems, "ACCESS_TOKEN_EXPIRE_MINUTES must be a positive integer")
	}
	if c.PostMaxLength <= 0 {
		problems = append(problems, "POST_MAX_LENGTH must be a positive integer")
	}
	if c.CacheTTLSeconds <= 0 {
		problems = append(problems, "CACHE_TTL_SECONDS must be a positive integer")
	}
	if c.DBDriver != "postgres" && c.DBDriver != "pgx" {
		problems = append(problems, fmt.Sprintf("DB_DRIVER %q is not supported (use postgres or pgx)", c.DBDriver))
	}
	if c.CacheBackend != "memory" && c.CacheBackend != "redis" {
		problems = append(problems, fmt.Sprintf("CACHE_BACKEND %q is not supported (use memory or redis)", c.CacheBackend))
	}
	if c.Env == "prod" && (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		problems = append(problems, "TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

// DatabaseURL returns the postgres URL form of the connection settings, as used by migrations.
func (c Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

func (c *Config) strictInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		c.errs = append(c.errs, fmt.Sprintf("%s must be an integer, got %q", key, v))
		return 0
	}
	return n
}

// parseCORSOrigins splits a comma-separated list of origins and trims spaces. Empty strings are omitted.
func parseCORSOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
