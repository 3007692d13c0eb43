package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration, loaded from environment
// variables.
type Config struct {
	// IMAP settings
	IMAPHost     string
	IMAPPort     int
	IMAPUsername string
	IMAPPassword string

	// SMTP settings
	SMTPHost     string
	SMTPPort     int
	SMTPSecure   bool
	SMTPUsername string
	SMTPPassword string

	// Behavior flags
	Debug           bool
	EnableCache     bool
	EnableAnalytics bool
	AutoSync        bool
	SyncInterval    time.Duration

	// Logging
	LogLevel      string
	LogBufferSize int

	// Limits
	SearchResultLimit int
	MessageCacheSize  int
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		IMAPHost:     getEnv("IMAP_HOST", "127.0.0.1"),
		IMAPPort:     getEnvInt("IMAP_PORT", 1143),
		IMAPUsername: getEnv("IMAP_USERNAME", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),

		SMTPHost:     getEnv("SMTP_HOST", "127.0.0.1"),
		SMTPPort:     getEnvInt("SMTP_PORT", 1025),
		SMTPSecure:   getEnvBool("SMTP_SECURE", false),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		Debug:           getEnvBool("DEBUG", false),
		EnableCache:     getEnvBool("ENABLE_CACHE", true),
		EnableAnalytics: getEnvBool("ENABLE_ANALYTICS", true),
		AutoSync:        getEnvBool("AUTO_SYNC", false),
		SyncInterval:    time.Duration(getEnvInt("SYNC_INTERVAL_MINUTES", 15)) * time.Minute,

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogBufferSize: getEnvInt("LOG_BUFFER_SIZE", 1000),

		SearchResultLimit: getEnvInt("SEARCH_RESULT_LIMIT", 100),
		MessageCacheSize:  getEnvInt("MESSAGE_CACHE_SIZE", 500),
	}

	if cfg.SMTPUsername == "" {
		cfg.SMTPUsername = cfg.IMAPUsername
	}
	if cfg.SMTPPassword == "" {
		cfg.SMTPPassword = cfg.IMAPPassword
	}

	return cfg, nil
}

// Validate validates the configuration. The two credential fields are
// mandatory: the process refuses to start without them.
func (c *Config) Validate() error {
	if c.IMAPUsername == "" {
		return fmt.Errorf("IMAP_USERNAME is required")
	}
	if c.IMAPPassword == "" {
		return fmt.Errorf("IMAP_PASSWORD is required")
	}
	if c.IMAPHost == "" {
		return fmt.Errorf("IMAP_HOST is required")
	}
	if c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST is required")
	}
	if c.IMAPPort < 1 || c.IMAPPort > 65535 {
		return fmt.Errorf("invalid IMAP_PORT: %d", c.IMAPPort)
	}
	if c.SMTPPort < 1 || c.SMTPPort > 65535 {
		return fmt.Errorf("invalid SMTP_PORT: %d", c.SMTPPort)
	}
	if c.SearchResultLimit < 1 || c.SearchResultLimit > 1000 {
		return fmt.Errorf("SEARCH_RESULT_LIMIT must be between 1 and 1000")
	}
	if c.LogBufferSize < 1 {
		return fmt.Errorf("LOG_BUFFER_SIZE must be positive")
	}
	if c.MessageCacheSize < 1 {
		return fmt.Errorf("MESSAGE_CACHE_SIZE must be positive")
	}
	if c.AutoSync && c.SyncInterval < time.Minute {
		return fmt.Errorf("SYNC_INTERVAL_MINUTES must be at least 1")
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
