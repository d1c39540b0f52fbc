package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BOT_API_URL", "")
	t.Setenv("POLL_INTERVAL", "")

	cfg, err := Load()

	assert.NoError(t, err)
	assert.Equal(t, ":8090", cfg.ListenAddr)
	assert.Equal(t, 30, cfg.RequestTimeout)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("BOT_API_URL", "http://bot:8080")
	t.Setenv("POLL_INTERVAL", "500ms")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001234")
	t.Setenv("REQUESTS_PER_SEC", "12")

	cfg, err := Load()

	assert.NoError(t, err)
	assert.Equal(t, "http://bot:8080", cfg.BotAPIURL)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, int64(-1001234), cfg.TelegramChatID)
	assert.Equal(t, 12, cfg.RequestsPerSec)
}

func TestFromViper_InvalidDurationFallsBack(t *testing.T) {
	v := viper.New()
	v.Set("POLL_INTERVAL", "soon")

	cfg := FromViper(v)

	assert.Equal(t, 2*time.Second, cfg.PollInterval)
}

func TestLoad_AllowedOrigins(t *testing.T) {
	t.Setenv("WS_ALLOWED_ORIGINS", "https://dash.example.com, ,http://localhost:3000")

	cfg, err := Load()

	assert.NoError(t, err)
	assert.Equal(t, []string{"https://dash.example.com", "http://localhost:3000"}, cfg.WSAllowedOrigins)
}
