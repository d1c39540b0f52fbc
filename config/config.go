package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/Alias1177/BotView/models"
)

var defaults = map[string]any{
	"BOT_API_URL":      "http://127.0.0.1:8080",
	"REQUEST_TIMEOUT":  30,
	"REQUESTS_PER_SEC": 5,
	"LISTEN_ADDR":      ":8090",
	"DASHBOARD_USER":   "admin",
	"POLL_INTERVAL":    "2s",
	"CACHE_TTL":        "1h",
	"DB_PORT":          "5432",
	"DB_SSLMODE":       "disable",
	"REDIS_DB":         0,
	"LOG_LEVEL":        "info",
}

// Load initializes configuration from the environment, reading .env first if present
func Load() (*models.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	return FromViper(v), nil
}

// FromViper maps viper keys onto the config struct
func FromViper(v *viper.Viper) *models.Config {
	return &models.Config{
		BotAPIURL:      v.GetString("BOT_API_URL"),
		BotUsername:    v.GetString("BOT_API_USERNAME"),
		BotPassword:    v.GetString("BOT_API_PASSWORD"),
		BotJWTToken:    v.GetString("BOT_JWT_TOKEN"),
		RequestTimeout: v.GetInt("REQUEST_TIMEOUT"),
		RequestsPerSec: v.GetInt("REQUESTS_PER_SEC"),

		ListenAddr:            v.GetString("LISTEN_ADDR"),
		DashboardUser:         v.GetString("DASHBOARD_USER"),
		DashboardPasswordHash: v.GetString("DASHBOARD_PASSWORD_HASH"),
		WSAllowedOrigins:      splitList(v.GetString("WS_ALLOWED_ORIGINS")),

		PollInterval: durationOr(v.GetDuration("POLL_INTERVAL"), 2*time.Second),
		CacheTTL:     durationOr(v.GetDuration("CACHE_TTL"), time.Hour),

		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		TelegramToken:  v.GetString("TELEGRAM_BOT_TOKEN"),
		TelegramChatID: v.GetInt64("TELEGRAM_CHAT_ID"),

		LogLevel: v.GetString("LOG_LEVEL"),
		LogFile:  v.GetString("LOG_FILE"),
	}
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

// splitList parses a comma separated env value, dropping blanks
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
