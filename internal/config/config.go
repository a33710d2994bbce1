package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	LockLocal = "local"
	LockRedis = "redis"

	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env         string
	DBDriver    string
	DatabaseURL string
	ServerPort  int

	// bcrypt hash of the single admin password
	AdminPasswordHash []byte
	SessionLifetime   time.Duration

	LockBackend   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSOrigins []string
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		Env:           getenv("APP_ENV", EnvProduction),
		DBDriver:      getenv("DB_DRIVER", DriverSQLite),
		DatabaseURL:   getenv("DATABASE_URL", "tablecup.db?_journal_mode=WAL"),
		LockBackend:   getenv("LOCK_BACKEND", LockLocal),
		RedisAddr:     os.Getenv("REDIS_URL"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}

	if cfg.Env != EnvDevelopment && cfg.Env != EnvProduction {
		return nil, fmt.Errorf("APP_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, cfg.Env)
	}
	if cfg.DBDriver != DriverSQLite && cfg.DBDriver != DriverPostgres {
		return nil, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, cfg.DBDriver)
	}

	port, err := strconv.Atoi(getenv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	cfg.SessionLifetime, err = time.ParseDuration(getenv("SESSION_LIFETIME", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_LIFETIME environment variable: %w", err)
	}

	switch cfg.LockBackend {
	case LockLocal:
	case LockRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_URL is required when LOCK_BACKEND is %q", LockRedis)
		}
		if v := os.Getenv("REDIS_DB"); v != "" {
			if cfg.RedisDB, err = strconv.Atoi(v); err != nil {
				return nil, fmt.Errorf("invalid REDIS_DB environment variable: %w", err)
			}
		}
	default:
		return nil, fmt.Errorf("LOCK_BACKEND must be %q or %q, got %q", LockLocal, LockRedis, cfg.LockBackend)
	}

	if hash := os.Getenv("ADMIN_PASSWORD_HASH"); hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("invalid ADMIN_PASSWORD_HASH: %w", err)
		}
		cfg.AdminPasswordHash = []byte(hash)
	} else {
		password := os.Getenv("ADMIN_PASSWORD")
		if password == "" {
			if cfg.Env != EnvDevelopment {
				return nil, fmt.Errorf("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required when APP_ENV is %q", cfg.Env)
			}
			slog.Warn("ADMIN_PASSWORD is not set, falling back to the development password")
			password = "admin"
		}
		cfg.AdminPasswordHash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing admin password: %w", err)
		}
	}

	for _, origin := range strings.Split(os.Getenv("CORS_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	return cfg, nil
}

// CheckAdminPassword reports whether the password matches the configured hash.
func (c *Config) CheckAdminPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(c.AdminPasswordHash, []byte(password)) == nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
