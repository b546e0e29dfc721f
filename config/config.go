/*
Package config loads the application configuration.

PURPOSE:
  One flat AppConfig loaded from an optional YAML file, then overridden
  by environment variables, then validated. The file is optional so a
  bare `server` start with defaults works out of the box.

PRECEDENCE:
  defaults < YAML file < environment
*/
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/muster/personnel-engine/calendar"
)

const defaultConfigPath = "config/app.yaml"

type AppConfig struct {
	ListenAddr string `yaml:"listen_addr" env:"MUSTER_LISTEN_ADDR" env-default:":8000"`
	DBPath     string `yaml:"db_path" env:"MUSTER_DB_PATH" env-default:"./data/muster.db"`
	StaticDir  string `yaml:"static_dir" env:"MUSTER_STATIC_DIR" env-default:"./static"`

	// WeekRangeMode selects the weekly window algorithm: "simple"
	// (next Monday through Sunday) or "legacy" (first five working days
	// of next week, holidays elided).
	WeekRangeMode string `yaml:"week_range_mode" env:"MUSTER_WEEK_RANGE_MODE" env-default:"simple"`

	Session SessionConfig `yaml:"session"`
	Admin   AdminConfig   `yaml:"admin"`
}

type SessionConfig struct {
	TTL time.Duration `yaml:"ttl" env:"MUSTER_SESSION_TTL" env-default:"30m"`

	// Login lockout: LockoutAttempts failures within LockoutWindow lock
	// the client out until the oldest failure ages past the window.
	LockoutAttempts int           `yaml:"lockout_attempts" env:"MUSTER_LOCKOUT_ATTEMPTS" env-default:"5"`
	LockoutWindow   time.Duration `yaml:"lockout_window" env:"MUSTER_LOCKOUT_WINDOW" env-default:"5m"`

	// JanitorSpec is the cron schedule for the expired-session sweep.
	JanitorSpec string `yaml:"janitor_spec" env:"MUSTER_SESSION_JANITOR" env-default:"@every 10m"`
}

type AdminConfig struct {
	// Username of the bootstrap admin account, created on first start and
	// protected from deletion afterwards.
	Username string `yaml:"username" env:"MUSTER_ADMIN_USER" env-default:"admin"`

	// Password for the bootstrap account. Only used when the account does
	// not exist yet; rotate through the admin UI afterwards.
	Password string `yaml:"password" env:"MUSTER_ADMIN_PASSWORD" env-default:""`
}

// Load reads the config file (when present), applies environment
// overrides and validates the result.
func Load(path string) (*AppConfig, error) {
	if path == "" {
		path = defaultConfigPath
	}

	cfg := &AppConfig{}
	if st, err := os.Stat(path); err == nil && !st.IsDir() {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}

	normalize(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func normalize(cfg *AppConfig) {
	cfg.ListenAddr = strings.TrimSpace(cfg.ListenAddr)
	cfg.DBPath = strings.TrimSpace(cfg.DBPath)
	cfg.WeekRangeMode = strings.ToLower(strings.TrimSpace(cfg.WeekRangeMode))
}

func validate(cfg *AppConfig) error {
	if cfg.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if cfg.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if cfg.WeekRangeMode != "simple" && cfg.WeekRangeMode != "legacy" {
		return fmt.Errorf("week_range_mode must be %q or %q, got %q", "simple", "legacy", cfg.WeekRangeMode)
	}
	if cfg.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	if cfg.Session.LockoutAttempts <= 0 {
		return fmt.Errorf("lockout_attempts must be positive")
	}
	if cfg.Session.LockoutWindow <= 0 {
		return fmt.Errorf("lockout_window must be positive")
	}
	return nil
}

// WeekMode maps the configured string onto the calendar mode.
func (c *AppConfig) WeekMode() calendar.WeekRangeMode {
	if c.WeekRangeMode == "legacy" {
		return calendar.WeekRangeLegacy
	}
	return calendar.WeekRangeSimple
}
