package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds all application configuration
type Config struct {
	// Telegram configuration
	TelegramToken   string
	BotUsername     string
	AdminID         int64 // Telegram user allowed to use the admin panel
	AdminChannelID  int64 // Chat where withdrawal requests are approved
	PublicChannelID int64 // Chat where withdrawal statuses are published

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Redis configuration (admin dialog sessions)
	RedisAddr     string
	RedisPassword string
	DialogTTL     time.Duration

	// Flyer task API
	FlyerAPIURL   string
	FlyerAPIKey   string
	OracleTimeout time.Duration

	// Event mirror, disabled when NATSURL is empty
	NATSURL    string
	NATSPrefix string

	// Observability
	MetricsAddr string
	LogLevel    string

	// Environment
	Environment string // "development", "production" or "test"
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Failed to load .env file")
	}

	config := &Config{
		// Telegram
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		BotUsername:   os.Getenv("BOT_USERNAME"),

		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// Redis
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		DialogTTL:     10 * time.Minute,

		// Flyer
		FlyerAPIURL:   getEnv("FLYER_API_URL", "https://api.flyerservice.io"),
		FlyerAPIKey:   os.Getenv("FLYER_API_KEY"),
		OracleTimeout: 10 * time.Second,

		// NATS
		NATSURL:    os.Getenv("NATS_URL"),
		NATSPrefix: getEnv("NATS_SUBJECT_PREFIX", "starsbot"),

		// Observability
		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Environment
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	var err error
	if config.AdminID, err = parseInt64Env("ADMIN_ID"); err != nil {
		return nil, err
	}
	if config.AdminChannelID, err = parseInt64Env("ADMIN_CHANNEL_ID"); err != nil {
		return nil, err
	}
	if config.PublicChannelID, err = parseInt64Env("PUBLIC_CHANNEL_ID"); err != nil {
		return nil, err
	}
	if config.DialogTTL, err = parseDurationEnv("DIALOG_TTL", config.DialogTTL); err != nil {
		return nil, err
	}
	if config.OracleTimeout, err = parseDurationEnv("ORACLE_TIMEOUT", config.OracleTimeout); err != nil {
		return nil, err
	}

	if config.Environment != "test" {
		if err := config.validate(); err != nil {
			return nil, err
		}
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.BotUsername == "" {
		return fmt.Errorf("BOT_USERNAME is required")
	}
	if c.AdminID == 0 {
		return fmt.Errorf("ADMIN_ID is required")
	}
	if c.AdminChannelID == 0 || c.PublicChannelID == 0 {
		return fmt.Errorf("ADMIN_CHANNEL_ID and PUBLIC_CHANNEL_ID are required")
	}
	return nil
}

// IsProduction reports whether the bot runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseInt64Env(key string) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}
