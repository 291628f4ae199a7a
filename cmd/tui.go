package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/fburn/internal/config"
	"github.com/theirongolddev/fburn/internal/pipeline"
	"github.com/theirongolddev/fburn/internal/tui"
	"github.com/theirongolddev/fburn/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive finance dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	theme.SetActive(appCfg.Appearance.Theme)

	// Force TrueColor so background styling always produces ANSI codes.
	lipgloss.SetColorProfile(termenv.TrueColor)

	opts := tui.Options{
		Load:      tuiLoad,
		NeedSetup: !config.Exists(),
	}
	if flagMonth != "" {
		ref, err := referenceTime()
		if err != nil {
			return err
		}
		opts.Month = ref
	}

	// Log lines would corrupt the alternate screen.
	configureLogger(logger, flagLogFormat, "error")

	p := tea.NewProgram(tui.NewApp(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// tuiLoad loads a snapshot with the settings currently shown in the TUI.
func tuiLoad(ctx context.Context, cfg config.Config, progress pipeline.ProgressFunc) (*pipeline.LoadResult, error) {
	opts, closeFn := loadOptions(cfg, progress)
	defer closeFn()
	return pipeline.LoadSnapshot(ctx, opts)
}
