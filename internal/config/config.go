package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the service configuration loaded from environment variables
type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis (code reservations); empty falls back to in-process store
	RedisURL string

	// Remote catalog platform
	RemoteCatalogURL   string
	RemoteCatalogToken string
	RemoteRateLimit    int

	// Upload pacing
	UploadGroupDelay time.Duration

	// Code reservations
	ReservationTTL time.Duration

	// CORS
	AllowedOrigins []string
}

// Load reads the configuration from the environment, applying development
// defaults
func Load() *Config {
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	rateLimit, _ := strconv.Atoi(getEnv("REMOTE_RATE_LIMIT", "2"))

	return &Config{
		Port:        getEnv("PORT", "8094"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "catalog_sync_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisURL: getEnv("REDIS_URL", ""),

		RemoteCatalogURL:   getEnv("REMOTE_CATALOG_URL", "http://localhost:8069"),
		RemoteCatalogToken: getEnv("REMOTE_CATALOG_TOKEN", ""),
		RemoteRateLimit:    rateLimit,

		UploadGroupDelay: getEnvAsDuration("UPLOAD_GROUP_DELAY", 2*time.Second),
		ReservationTTL:   getEnvAsDuration("RESERVATION_TTL", 5*time.Minute),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
