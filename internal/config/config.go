// Package config loads and saves the fburn TOML config and resolves the
// XDG paths for the config file and the sqlite cache.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

// Config holds all fburn configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	API        APIConfig        `toml:"api"`
	Budget     BudgetConfig     `toml:"budget"`
	Notify     NotifyConfig     `toml:"notify"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Appearance AppearanceConfig `toml:"appearance"`
	TUI        TUIConfig        `toml:"tui"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DataDir  string `toml:"data_dir,omitempty"`
	Currency string `toml:"currency"`
	NoCache  bool   `toml:"no_cache"`
}

// APIConfig holds finance API settings.
type APIConfig struct {
	BaseURL           string  `toml:"base_url,omitempty"`
	Token             string  `toml:"token,omitempty"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// BudgetConfig holds the thresholds applied to budgets that do not set their own.
type BudgetConfig struct {
	DefaultWarningThreshold  float64 `toml:"default_warning_threshold"`
	DefaultCriticalThreshold float64 `toml:"default_critical_threshold"`
}

// NotifyConfig holds AMQP alert publishing settings.
type NotifyConfig struct {
	AMQPURL  string `toml:"amqp_url,omitempty"`
	Exchange string `toml:"exchange"`
	Queue    string `toml:"queue"`
}

// DaemonConfig holds background service settings.
type DaemonConfig struct {
	Addr            string `toml:"addr"`
	IntervalSeconds int    `toml:"interval_seconds"`
	BudgetCheckCron string `toml:"budget_check_cron"`
	EventsBuffer    int    `toml:"events_buffer"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// TUIConfig holds dashboard refresh settings.
type TUIConfig struct {
	AutoRefresh        bool `toml:"auto_refresh"`
	RefreshIntervalSec int  `toml:"refresh_interval_sec"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Currency: "EUR",
		},
		API: APIConfig{
			TimeoutSeconds:    15,
			RequestsPerSecond: 5,
		},
		Budget: BudgetConfig{
			DefaultWarningThreshold:  0.8,
			DefaultCriticalThreshold: 1.0,
		},
		Notify: NotifyConfig{
			Exchange: "fburn",
			Queue:    "budget-alerts",
		},
		Daemon: DaemonConfig{
			Addr:            "127.0.0.1:8791",
			IntervalSeconds: 300,
			BudgetCheckCron: "0 8 * * *",
			EventsBuffer:    200,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		TUI: TUIConfig{
			AutoRefresh:        true,
			RefreshIntervalSec: 60,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fburn")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// CachePath returns the path of the snapshot cache database.
func CachePath() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "fburn", "fburn.db")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "fburn", "fburn.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// GetAPIToken returns the API token from env var or config, in that order.
func GetAPIToken(cfg Config) string {
	if tok := os.Getenv("FBURN_API_TOKEN"); tok != "" {
		return tok
	}
	return cfg.API.Token
}

// GetAPIURL returns the API base URL from env var or config, in that order.
func GetAPIURL(cfg Config) string {
	if u := os.Getenv("FBURN_API_URL"); u != "" {
		return u
	}
	return cfg.API.BaseURL
}

// GetAMQPURL returns the broker URL from env var or config, in that order.
func GetAMQPURL(cfg Config) string {
	if u := os.Getenv("FBURN_AMQP_URL"); u != "" {
		return u
	}
	return cfg.Notify.AMQPURL
}

// Thresholds returns the default budget thresholds as decimals.
func (c Config) Thresholds() (warning, critical decimal.Decimal) {
	return decimal.NewFromFloat(c.Budget.DefaultWarningThreshold),
		decimal.NewFromFloat(c.Budget.DefaultCriticalThreshold)
}

// Validate checks the configuration and reports every problem found.
func (c Config) Validate() error {
	var problems []string

	w, crit := c.Budget.DefaultWarningThreshold, c.Budget.DefaultCriticalThreshold
	if w <= 0 || w > 1 {
		problems = append(problems, fmt.Sprintf("budget.default_warning_threshold must be in (0, 1], got %g", w))
	}
	if crit <= 0 {
		problems = append(problems, fmt.Sprintf("budget.default_critical_threshold must be positive, got %g", crit))
	}
	if w > crit {
		problems = append(problems, "budget.default_warning_threshold must not exceed the critical threshold")
	}
	if c.API.TimeoutSeconds <= 0 {
		problems = append(problems, "api.timeout_seconds must be positive")
	}
	if c.API.RequestsPerSecond <= 0 {
		problems = append(problems, "api.requests_per_second must be positive")
	}
	if c.Daemon.IntervalSeconds < 10 {
		problems = append(problems, "daemon.interval_seconds must be at least 10")
	}
	if c.Daemon.BudgetCheckCron != "" {
		if _, err := cron.ParseStandard(c.Daemon.BudgetCheckCron); err != nil {
			problems = append(problems, fmt.Sprintf("daemon.budget_check_cron: %v", err))
		}
	}
	if c.TUI.RefreshIntervalSec < 0 {
		problems = append(problems, "tui.refresh_interval_sec must not be negative")
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration:\n- " + strings.Join(problems, "\n- "))
	}
	return nil
}
