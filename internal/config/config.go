package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN          string
	HTTPAddr       string
	Environment    string
	MigrationsPath string
	SlotMinutes    int
}

// Load reads configuration from a .env file when present, then from the
// environment. DB_DSN is the only required setting.
func Load() (*Config, error) {
	// Missing .env is fine, plain environment variables still apply.
	_ = godotenv.Load(".env")

	cfg := &Config{
		DBDSN:          os.Getenv("DB_DSN"),
		HTTPAddr:       os.Getenv("HTTP_ADDR"),
		Environment:    os.Getenv("ENV"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "migrations"
	}

	cfg.SlotMinutes = 30
	if v := os.Getenv("SLOT_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("SLOT_MINUTES must be a positive integer, got %q", v)
		}
		cfg.SlotMinutes = minutes
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	return cfg, nil
}
