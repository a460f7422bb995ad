package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Port               string
	StoreDriver        string
	DatabaseURL        string
	AdminUsername      string
	AdminPassword      string
	JWTSecret          string
	JWTIssuer          string
	TokenTTL           time.Duration
	CORSAllowedOrigins []string
	LogLevel           string
}

// Load reads a .env file when present and builds the config from the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds the config from a lookup function, which keeps tests off the real environment.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		Port:               get("PORT", "8080"),
		StoreDriver:        strings.ToLower(get("STORE_DRIVER", StorePostgres)),
		DatabaseURL:        get("DATABASE_URL", ""),
		AdminUsername:      get("ADMIN_USERNAME", "admin"),
		AdminPassword:      getenv("ADMIN_PASSWORD"),
		JWTSecret:          getenv("JWT_SECRET"),
		JWTIssuer:          get("JWT_ISSUER", "newsdesk"),
		CORSAllowedOrigins: splitCSV(get("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           get("LOG_LEVEL", "info"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = dsnFromParts(get)
	}

	ttl, err := time.ParseDuration(get("TOKEN_TTL", "24h"))
	if err != nil || ttl <= 0 {
		return cfg, fmt.Errorf("invalid TOKEN_TTL %q", getenv("TOKEN_TTL"))
	}
	cfg.TokenTTL = ttl

	switch cfg.StoreDriver {
	case StorePostgres, StoreMemory:
	default:
		return cfg, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.StoreDriver == StorePostgres && cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL (or user/password/host/port/dbname) is required")
	}
	if cfg.AdminPassword == "" {
		return cfg, errors.New("ADMIN_PASSWORD is required")
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("JWT_SECRET is required")
	}
	return cfg, nil
}

// dsnFromParts supports the split connection variables used by hosted Postgres dashboards.
func dsnFromParts(get func(key, fallback string) string) string {
	host := get("host", "")
	if host == "" {
		return ""
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		get("user", "postgres"), get("password", ""), host, get("port", "5432"),
		get("dbname", "postgres"), get("sslmode", "require"))
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
