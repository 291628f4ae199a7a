package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fburn/internal/config"
	"github.com/theirongolddev/fburn/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	if dir := dataDir(); dir != "" {
		fmt.Printf("    Data directory: %s\n", dir)
	} else {
		fmt.Println("    Data directory: not set")
	}
	fmt.Printf("    Currency:       %s\n", cfg.General.Currency)
	fmt.Printf("    Cache:          %s", config.CachePath())
	if cfg.General.NoCache {
		fmt.Print(" (disabled)")
	}
	fmt.Println()
	if cache, err := store.Open(config.CachePath()); err == nil {
		if meta, err := cache.LoadMeta(); err == nil {
			fmt.Printf("    Cached from:    %s at %s\n", meta.Source, meta.FetchedAt.Local().Format("2006-01-02 15:04"))
		}
		_ = cache.Close()
	}
	fmt.Println()

	fmt.Println("  [API]")
	if u := config.GetAPIURL(cfg); u != "" {
		fmt.Printf("    Base URL: %s\n", u)
	} else {
		fmt.Println("    Base URL: not configured")
	}
	if token := config.GetAPIToken(cfg); token != "" {
		fmt.Printf("    Token:    %s\n", maskSecret(token))
	} else {
		fmt.Println("    Token:    not configured")
	}
	fmt.Printf("    Timeout:  %ds, %.1f req/s\n", cfg.API.TimeoutSeconds, cfg.API.RequestsPerSecond)
	fmt.Println()

	fmt.Println("  [Budget]")
	fmt.Printf("    Warning threshold:  %.0f%%\n", cfg.Budget.DefaultWarningThreshold*100)
	fmt.Printf("    Critical threshold: %.0f%%\n", cfg.Budget.DefaultCriticalThreshold*100)
	fmt.Println()

	fmt.Println("  [Notify]")
	if u := config.GetAMQPURL(cfg); u != "" {
		fmt.Printf("    AMQP:     %s\n", maskSecret(u))
	} else {
		fmt.Println("    AMQP:     not configured")
	}
	fmt.Printf("    Exchange: %s  Queue: %s\n", cfg.Notify.Exchange, cfg.Notify.Queue)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:      %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Poll every:   %ds\n", cfg.Daemon.IntervalSeconds)
	fmt.Printf("    Budget check: %s\n", cfg.Daemon.BudgetCheckCron)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `fburn setup` to reconfigure.")
	return nil
}

func maskSecret(s string) string {
	if len(s) > 16 {
		return s[:8] + "..." + s[len(s)-4:]
	}
	if len(s) > 4 {
		return s[:4] + "..."
	}
	return "****"
}
