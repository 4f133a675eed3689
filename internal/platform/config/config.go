package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr               string
	DatabaseURL        string
	JWTSecret          string
	DataEncryptionKey  string
	Environment        string
	MigrationsDir      string
	RunMigrations      bool
	RunSeed            bool
	SeedPassword       string
	MaxBodyBytes       int64
	RateLimitPerMinute int
	SessionTTL         time.Duration
	RegenerateInterval time.Duration
	EmailEnabled       bool
	EmailFrom          string
	SMTPHost           string
	SMTPPort           int
	SMTPUser           string
	SMTPPassword       string
	MetricsEnabled     bool
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:               getEnv("APP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		DataEncryptionKey:  getEnv("DATA_ENCRYPTION_KEY", ""),
		Environment:        getEnv("APP_ENV", "development"),
		MigrationsDir:      getEnv("MIGRATIONS_DIR", "migrations"),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:            getEnvBool("RUN_SEED", true),
		SeedPassword:       getEnv("SEED_PASSWORD", ""),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		SessionTTL:         getEnvDuration("SESSION_TTL", 8*time.Hour),
		RegenerateInterval: getEnvDuration("REGENERATE_INTERVAL", 0),
		EmailEnabled:       getEnvBool("EMAIL_ENABLED", false),
		EmailFrom:          getEnv("EMAIL_FROM", "no-reply@example.com"),
		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           getEnvInt("SMTP_PORT", 587),
		SMTPUser:           getEnv("SMTP_USER", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.IsProduction() {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production to protect evaluation comments")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedPassword) == "" {
			return fmt.Errorf("SEED_PASSWORD must be set or RUN_SEED disabled in production")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.RegenerateInterval < 0 {
		return fmt.Errorf("REGENERATE_INTERVAL must not be negative")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	return nil
}
