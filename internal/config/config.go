package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabasePath      string
	CloudAPIURL       string
	CloudTokenURL     string
	CloudClientID     string
	CloudClientSecret string
	SyncIntervalMs    int
	MaxAttempts       int
	ShutdownTimeout   int // seconds
	LogLevel          string
	LogFormat         string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error in production)
	_ = godotenv.Load()

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		return nil, fmt.Errorf("DATABASE_PATH is required")
	}

	apiURL := os.Getenv("CLOUD_API_URL")
	if apiURL == "" {
		return nil, fmt.Errorf("CLOUD_API_URL is required")
	}

	return &Config{
		DatabasePath:      dbPath,
		CloudAPIURL:       apiURL,
		CloudTokenURL:     os.Getenv("CLOUD_TOKEN_URL"),
		CloudClientID:     os.Getenv("CLOUD_CLIENT_ID"),
		CloudClientSecret: os.Getenv("CLOUD_CLIENT_SECRET"),
		SyncIntervalMs:    envInt("SYNC_INTERVAL_MS", 60000),
		MaxAttempts:       envInt("SYNC_MAX_ATTEMPTS", 5),
		ShutdownTimeout:   envInt("SHUTDOWN_TIMEOUT", 30),
		LogLevel:          envString("LOG_LEVEL", "info"),
		LogFormat:         envString("LOG_FORMAT", "json"),
	}, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
