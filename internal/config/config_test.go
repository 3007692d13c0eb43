package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg, _ := LoadConfig()
	cfg.IMAPUsername = "me@example.com"
	cfg.IMAPPassword = "secret"
	return cfg
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.IMAPHost)
	assert.Equal(t, 1143, cfg.IMAPPort)
	assert.Equal(t, 1025, cfg.SMTPPort)
	assert.True(t, cfg.EnableCache)
	assert.True(t, cfg.EnableAnalytics)
	assert.False(t, cfg.AutoSync)
	assert.Equal(t, 15*time.Minute, cfg.SyncInterval)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 100, cfg.SearchResultLimit)
	assert.Equal(t, 500, cfg.MessageCacheSize)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("IMAP_HOST", "imap.example.com")
	t.Setenv("IMAP_PORT", "993")
	t.Setenv("SMTP_SECURE", "true")
	t.Setenv("SYNC_INTERVAL_MINUTES", "5")
	t.Setenv("ENABLE_CACHE", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "imap.example.com", cfg.IMAPHost)
	assert.Equal(t, 993, cfg.IMAPPort)
	assert.True(t, cfg.SMTPSecure)
	assert.Equal(t, 5*time.Minute, cfg.SyncInterval)
	assert.False(t, cfg.EnableCache)
}

func TestSMTPCredentialsDefaultToIMAP(t *testing.T) {
	t.Setenv("IMAP_USERNAME", "me@example.com")
	t.Setenv("IMAP_PASSWORD", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", cfg.SMTPUsername)
	assert.Equal(t, "secret", cfg.SMTPPassword)
}

func TestValidateRequiresCredentials(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	cfg.IMAPUsername = ""
	assert.ErrorContains(t, cfg.Validate(), "IMAP_USERNAME is required")

	cfg = validConfig()
	cfg.IMAPPassword = ""
	assert.ErrorContains(t, cfg.Validate(), "IMAP_PASSWORD is required")
}

func TestValidateRanges(t *testing.T) {
	cfg := validConfig()
	cfg.IMAPPort = 0
	assert.ErrorContains(t, cfg.Validate(), "invalid IMAP_PORT")

	cfg = validConfig()
	cfg.SMTPPort = 70000
	assert.ErrorContains(t, cfg.Validate(), "invalid SMTP_PORT")

	cfg = validConfig()
	cfg.SearchResultLimit = 0
	assert.ErrorContains(t, cfg.Validate(), "SEARCH_RESULT_LIMIT")

	cfg = validConfig()
	cfg.AutoSync = true
	cfg.SyncInterval = 10 * time.Second
	assert.ErrorContains(t, cfg.Validate(), "SYNC_INTERVAL_MINUTES")
}
