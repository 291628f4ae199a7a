// Package cmd implements the fburn CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/fburn/internal/apiclient"
	"github.com/theirongolddev/fburn/internal/calendar"
	"github.com/theirongolddev/fburn/internal/config"
	"github.com/theirongolddev/fburn/internal/pipeline"
	"github.com/theirongolddev/fburn/internal/store"
)

var (
	flagDataDir   string
	flagNoCache   bool
	flagRefresh   bool
	flagMonth     string
	flagQuiet     bool
	flagLogFormat string
	flagLogLevel  string
)

var (
	appCfg = config.DefaultConfig()
	logger = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "fburn",
	Short: "Personal finance metrics CLI",
	Long:  "Track balances, budgets, savings goals and spending from finance exports or the finance API.",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initRuntime()
	},
	RunE:          runSummary,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Directory of JSON export files (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse everything")
	rootCmd.PersistentFlags().BoolVar(&flagRefresh, "refresh", false, "Fetch a fresh snapshot from the API")
	rootCmd.PersistentFlags().StringVarP(&flagMonth, "month", "m", "", "Reference month as YYYY-MM (default: current month)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (default: $LOG_LEVEL or info)")
}

// initRuntime loads .env, the config file and the logger. A missing .env
// file is not an error.
func initRuntime() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	appCfg = cfg

	configureLogger(logger, flagLogFormat, flagLogLevel)
	return nil
}

func configureLogger(l *logrus.Logger, format, level string) {
	l.SetOutput(os.Stderr)
	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}

	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	if flagQuiet && lvl > logrus.WarnLevel {
		lvl = logrus.WarnLevel
	}
	l.SetLevel(lvl)
}

func dataDir() string {
	if flagDataDir != "" {
		return flagDataDir
	}
	return appCfg.General.DataDir
}

// referenceTime resolves --month to the instant metrics are computed at.
func referenceTime() (time.Time, error) {
	now := time.Now()
	if flagMonth == "" {
		return now, nil
	}
	ref, err := calendar.ParseMonth(flagMonth, now, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --month %q (want YYYY-MM): %w", flagMonth, err)
	}
	return ref, nil
}

func newAPIClient(cfg config.Config) *apiclient.Client {
	return apiclient.NewClient(apiclient.Options{
		BaseURL:           config.GetAPIURL(cfg),
		Token:             config.GetAPIToken(cfg),
		Timeout:           time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
	})
}

// loadOptions builds the snapshot loading options from flags and cfg.
// The returned func closes the cache, if one was opened.
func loadOptions(cfg config.Config, progressFn pipeline.ProgressFunc) (pipeline.LoadOptions, func()) {
	dir := cfg.General.DataDir
	if flagDataDir != "" {
		dir = flagDataDir
	}
	warning, critical := cfg.Thresholds()
	opts := pipeline.LoadOptions{
		DataDir:           dir,
		Refresh:           flagRefresh,
		Progress:          progressFn,
		WarningThreshold:  warning,
		CriticalThreshold: critical,
	}
	// Only a non-nil client may be stored in the interface field.
	if client := newAPIClient(cfg); client != nil {
		opts.Fetcher = client
	}

	closeFn := func() {}
	if !flagNoCache && !cfg.General.NoCache {
		cache, err := store.Open(config.CachePath())
		if err != nil {
			logger.Warnf("cache unavailable, continuing without it: %v", err)
		} else {
			opts.Cache = cache
			closeFn = func() { _ = cache.Close() }
		}
	}
	return opts, closeFn
}

// loadData is the shared data loading path used by all commands.
func loadData(ctx context.Context) (*pipeline.LoadResult, error) {
	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		if current%10 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
		}
	}

	opts, closeFn := loadOptions(appCfg, progressFn)
	defer closeFn()

	result, err := pipeline.LoadSnapshot(ctx, opts)
	if err != nil {
		return nil, err
	}

	if !flagQuiet {
		if result.TotalFiles > 0 && result.Source == pipeline.SourceFiles {
			fmt.Fprintln(os.Stderr)
		}
		logger.Infof("Loaded %d accounts, %d transactions, %d budgets, %d goals (source: %s)",
			len(result.Snapshot.Accounts), len(result.Snapshot.Transactions),
			len(result.Snapshot.Budgets), len(result.Snapshot.Goals), result.Source)
	}
	for _, w := range result.Warnings {
		logger.Warn(w)
	}
	if result.ParseErrors > 0 || result.Skipped > 0 {
		logger.Warnf("%d records skipped as malformed", result.ParseErrors+result.Skipped)
	}
	return result, nil
}
