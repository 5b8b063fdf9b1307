package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is read from the environment; a .env file in the working
// directory is loaded first when present.
type Config struct {
	TelegramToken string
	DBPath        string
	AccessIDsFile string
	Debug         bool
	LogLevel      slog.Level
	GracePeriod   time.Duration
}

const defaultGraceSeconds = 10

func Load() (*Config, error) {
	// Missing .env is fine; real env vars win either way.
	_ = godotenv.Load()

	token := os.Getenv("TELEGRAM_API_TOKEN")
	if token == "" {
		return nil, errors.New("TELEGRAM_API_TOKEN: telegram bot API token not provided")
	}

	cfg := &Config{
		TelegramToken: token,
		DBPath:        envOr("DB_PATH", "checkyourtime.db"),
		AccessIDsFile: os.Getenv("ACCESS_IDS_FILE"),
		Debug:         strings.EqualFold(os.Getenv("DEBUG_MODE"), "true"),
		LogLevel:      slog.LevelInfo,
		GracePeriod:   defaultGraceSeconds * time.Second,
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("LOG_LEVEL %q: %w", v, err)
		}
	}

	if v := os.Getenv("GRACE_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("GRACE_SECONDS %q: must be a positive integer", v)
		}
		cfg.GracePeriod = time.Duration(n) * time.Second
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
