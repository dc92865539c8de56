// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Environment ("development" or "production").
	Env string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// EDGAR client
	EdgarBaseURL   string
	EdgarDataURL   string
	EdgarUserAgent string
	RateLimitRPS   float64
	RequestTimeout time.Duration

	// Ingestion
	MaxConcurrent int
}

var appConfig *Config

// Load loads configuration from environment variables.
// EDGAR_USER_AGENT is required: SEC usage policy mandates a
// caller-identifying header on every request.
func Load() (*Config, error) {
	// Load .env file if not already loaded.
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env: getEnv("APP_ENV", "development"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "thirteen"),
		DBPassword: getEnv("DB_PASSWORD", "thirteen"),
		DBName:     getEnv("DB_NAME", "thirteen"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		EdgarBaseURL: getEnv("EDGAR_BASE_URL", "https://www.sec.gov"),
		EdgarDataURL: getEnv("EDGAR_DATA_URL", "https://data.sec.gov"),
	}

	config.EdgarUserAgent = os.Getenv("EDGAR_USER_AGENT")
	if config.EdgarUserAgent == "" {
		return nil, fmt.Errorf("EDGAR_USER_AGENT is required (e.g. \"Name Surname contact@example.com\")")
	}

	rps, err := parseFloat(os.Getenv("EDGAR_RATE_LIMIT_RPS"), 8)
	if err != nil {
		return nil, fmt.Errorf("invalid EDGAR_RATE_LIMIT_RPS: %w", err)
	}
	if rps <= 0 {
		return nil, fmt.Errorf("EDGAR_RATE_LIMIT_RPS must be positive, got %v", rps)
	}
	config.RateLimitRPS = rps

	timeout, err := parseTimeout(os.Getenv("REQUEST_TIMEOUT"))
	if err != nil {
		return nil, err
	}
	config.RequestTimeout = timeout

	maxConcurrent, err := parseInt(os.Getenv("INGEST_MAX_CONCURRENT"), 4)
	if err != nil {
		return nil, fmt.Errorf("invalid INGEST_MAX_CONCURRENT: %w", err)
	}
	if maxConcurrent <= 0 {
		return nil, fmt.Errorf("INGEST_MAX_CONCURRENT must be positive, got %d", maxConcurrent)
	}
	config.MaxConcurrent = maxConcurrent

	appConfig = config
	return config, nil
}

// Get returns the application configuration.
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// PostgresURL returns the postgres URL form of the DSN, used by golang-migrate.
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseFloat(s string, defaultVal float64) (float64, error) {
	if s == "" {
		return defaultVal, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseInt(s string, defaultVal int) (int, error) {
	if s == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(s)
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid REQUEST_TIMEOUT %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %v", d)
	}
	return d, nil
}
