package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type AppConfig struct {
	// Table-storage endpoint serving the daily temperature records.
	TableURL           string
	TableViewID        string
	TableToken         string
	TableTokenHeader   string
	TableLimit         int
	FilterByPostalCode bool
	FetchRetries       int
	HTTPTimeout        time.Duration // 0 = no client timeout

	// PostalCode is used until the user stores one.
	PostalCode string

	// Daily reminder: ReminderCron wins over ReminderTime when both are set.
	ReminderTime string // HH:MM
	ReminderCron string
	Location     *time.Location

	// RefreshInterval controls the background refresh (0 = disabled).
	RefreshInterval time.Duration

	PrefsPath string

	Port     string
	AppEnv   string
	LogLevel slog.Level
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	cfg := &AppConfig{}

	cfg.TableURL = os.Getenv("TABLE_URL")
	cfg.TableViewID = os.Getenv("TABLE_VIEW_ID")
	cfg.TableToken = os.Getenv("TABLE_TOKEN")
	cfg.TableTokenHeader = getenvDefault("TABLE_TOKEN_HEADER", "xc-token")
	cfg.TableLimit = getenvInt("TABLE_LIMIT", 365)
	cfg.FetchRetries = getenvInt("FETCH_RETRIES", 0)

	filter, err := strconv.ParseBool(getenvDefault("FILTER_BY_POSTAL_CODE", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid FILTER_BY_POSTAL_CODE: %w", err)
	}
	cfg.FilterByPostalCode = filter

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "0s"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "6h"); err != nil {
		return nil, err
	}

	cfg.PostalCode = strings.TrimSpace(os.Getenv("POSTAL_CODE"))

	cfg.ReminderTime = strings.TrimSpace(os.Getenv("REMINDER_TIME"))
	if cfg.ReminderTime != "" {
		if _, err := time.Parse("15:04", cfg.ReminderTime); err != nil {
			return nil, fmt.Errorf("invalid REMINDER_TIME (want HH:MM): %w", err)
		}
	}
	cfg.ReminderCron = strings.TrimSpace(os.Getenv("REMINDER_CRON"))
	if cfg.ReminderCron != "" {
		if _, err := cron.ParseStandard(cfg.ReminderCron); err != nil {
			return nil, fmt.Errorf("invalid REMINDER_CRON: %w", err)
		}
	}

	loc, err := time.LoadLocation(getenvDefault("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	cfg.PrefsPath = getenvDefault("PREFS_PATH", "data/preferences.db")
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.AppEnv = getenvDefault("APP_ENV", "dev")

	if err := cfg.LogLevel.UnmarshalText([]byte(getenvDefault("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

// ReminderAt returns today's reminder time in the configured location, if a
// REMINDER_TIME is set.
func (c *AppConfig) ReminderAt(now time.Time) (time.Time, bool) {
	if c.ReminderTime == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("15:04", c.ReminderTime)
	if err != nil {
		return time.Time{}, false
	}
	now = now.In(c.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, c.Location), true
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
