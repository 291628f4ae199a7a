package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/fburn/internal/config"
	"github.com/theirongolddev/fburn/internal/source"
	"github.com/theirongolddev/fburn/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg := appCfg
	vals := tui.SetupValuesFrom(cfg)
	if flagDataDir != "" {
		vals.DataDir = flagDataDir
	}

	if err := tui.NewSetupForm(&vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled; nothing was saved.")
			return nil
		}
		return err
	}

	vals.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	if cfg.General.DataDir != "" {
		if files, err := source.ScanDir(cfg.General.DataDir); err == nil {
			fmt.Printf("  Found %d export files in %s\n", len(files), cfg.General.DataDir)
		} else {
			fmt.Printf("  Warning: %v\n", err)
		}
	}
	if config.GetAPIURL(cfg) != "" {
		fmt.Printf("  API: %s (token %s)\n", config.GetAPIURL(cfg), maskSecret(config.GetAPIToken(cfg)))
	}
	fmt.Println("  Run `fburn setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
