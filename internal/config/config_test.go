package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Budget.DefaultWarningThreshold != 0.8 || cfg.Budget.DefaultCriticalThreshold != 1.0 {
		t.Errorf("thresholds = %g/%g, want 0.8/1.0",
			cfg.Budget.DefaultWarningThreshold, cfg.Budget.DefaultCriticalThreshold)
	}
	if Exists() {
		t.Error("Exists = true before Save")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg := DefaultConfig()
	cfg.General.DataDir = "/srv/exports"
	cfg.API.BaseURL = "https://finance.example.com"
	cfg.Budget.DefaultWarningThreshold = 0.7
	cfg.Daemon.BudgetCheckCron = "30 7 * * 1-5"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "fburn", "config.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config perm = %o, want 600", perm)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.General.DataDir != "/srv/exports" || got.API.BaseURL != "https://finance.example.com" {
		t.Errorf("general/api = %+v / %+v", got.General, got.API)
	}
	if got.Budget.DefaultWarningThreshold != 0.7 {
		t.Errorf("warning = %g, want 0.7", got.Budget.DefaultWarningThreshold)
	}
	if got.Daemon.BudgetCheckCron != "30 7 * * 1-5" {
		t.Errorf("cron = %q", got.Daemon.BudgetCheckCron)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, "fburn", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[appearance]\ntheme = \"catppuccin-mocha\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Appearance.Theme != "catppuccin-mocha" {
		t.Errorf("theme = %q", cfg.Appearance.Theme)
	}
	if cfg.Daemon.Addr != "127.0.0.1:8791" {
		t.Errorf("daemon addr = %q, want default", cfg.Daemon.Addr)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, "fburn", "config.toml")
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	_ = os.WriteFile(path, []byte("[general\n"), 0o600)

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Errorf("err = %v, want parsing error", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.Token = "from-config"
	cfg.Notify.AMQPURL = "amqp://config"

	t.Setenv("FBURN_API_TOKEN", "")
	if got := GetAPIToken(cfg); got != "from-config" {
		t.Errorf("token = %q, want from-config", got)
	}
	t.Setenv("FBURN_API_TOKEN", "from-env")
	if got := GetAPIToken(cfg); got != "from-env" {
		t.Errorf("token = %q, want from-env", got)
	}
	t.Setenv("FBURN_AMQP_URL", "amqp://env")
	if got := GetAMQPURL(cfg); got != "amqp://env" {
		t.Errorf("amqp = %q", got)
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Budget.DefaultWarningThreshold = 1.5
	cfg.Daemon.BudgetCheckCron = "every morning"
	cfg.API.TimeoutSeconds = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"default_warning_threshold", "budget_check_cron", "timeout_seconds"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %s", msg, want)
		}
	}
}

func TestThresholds(t *testing.T) {
	w, c := DefaultConfig().Thresholds()
	if w.String() != "0.8" || c.String() != "1" {
		t.Errorf("Thresholds = %s/%s, want 0.8/1", w, c)
	}
}
