package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default endpoints follow the Nutritionix v2 API layout; override them to
// point at a proxy or a compatible wrapper.
const (
	defaultNaturalURL = "https://trackapi.nutritionix.com/v2/natural/nutrients"
	defaultSearchURL  = "https://trackapi.nutritionix.com/v2/search/instant"
)

// Config holds all configuration for the pipeline binaries
type Config struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Nutrition API configuration
	APIAppID      string
	APIAppKey     string
	NaturalAPIURL string
	SearchAPIURL  string

	// Pipeline tuning
	BatchSize   int           // common_food rows pulled per drain iteration
	CallDelay   time.Duration // pause after each successful external call
	CallTimeout time.Duration // per-request timeout for external calls

	// Redis configuration (optional; empty host disables response caching)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

// LoadConfig creates a new Config instance from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),

		APIAppID:      os.Getenv("NUTRITION_API_APP_ID"),
		APIAppKey:     os.Getenv("NUTRITION_API_APP_KEY"),
		NaturalAPIURL: getEnv("NUTRIENT_API_URL", defaultNaturalURL),
		SearchAPIURL:  getEnv("FOOD_API_URL", defaultSearchURL),

		BatchSize:   getEnvInt("PULL_BATCH", 50),
		CallDelay:   getEnvDuration("CALL_DELAY", 250*time.Millisecond),
		CallTimeout: getEnvDuration("CALL_TIMEOUT", 30*time.Second),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// DSN returns the Postgres connection string for the configured database
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
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
		return fallback
	}
	return i
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
