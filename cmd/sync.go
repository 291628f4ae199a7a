package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fburn/internal/config"
	"github.com/theirongolddev/fburn/internal/pipeline"
	"github.com/theirongolddev/fburn/internal/store"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch a fresh snapshot from the finance API into the cache",
	RunE:  runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	client := newAPIClient(appCfg)
	if client == nil {
		return errors.New("no API configured (set api.base_url or FBURN_API_URL, or run `fburn setup`)")
	}

	cache, err := store.Open(config.CachePath())
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer func() { _ = cache.Close() }()

	warning, critical := appCfg.Thresholds()
	start := time.Now()
	// DataDir is left empty so the API is used even when exports exist.
	result, err := pipeline.LoadSnapshot(cmd.Context(), pipeline.LoadOptions{
		Cache:             cache,
		Fetcher:           client,
		Refresh:           true,
		WarningThreshold:  warning,
		CriticalThreshold: critical,
	})
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		logger.Warn(w)
	}
	if result.Source != pipeline.SourceAPI {
		return fmt.Errorf("sync did not complete; serving %s", result.Source)
	}

	snap := result.Snapshot
	fmt.Printf("  Synced %d accounts, %d transactions, %d budgets, %d goals in %s\n",
		len(snap.Accounts), len(snap.Transactions), len(snap.Budgets), len(snap.Goals),
		time.Since(start).Round(time.Millisecond))
	if result.Skipped > 0 {
		fmt.Printf("  Skipped %d malformed records\n", result.Skipped)
	}
	fmt.Printf("  Cache: %s\n", config.CachePath())
	return nil
}
