package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/fburn/internal/config"
	"github.com/theirongolddev/fburn/internal/daemon"
	"github.com/theirongolddev/fburn/internal/notify"
	"github.com/theirongolddev/fburn/internal/pipeline"
)

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonCron         string
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool
	flagDaemonNoNotify     bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the background finance monitor with HTTP/SSE endpoints",
	Long: "Polls the finance data on an interval, serves the dashboard over HTTP, " +
		"and checks budgets on a cron schedule, publishing alerts to AMQP when configured.",
	RunE:  runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

func init() {
	runDir := filepath.Dir(config.CachePath())
	defaultPID := filepath.Join(runDir, "fburnd.pid")
	defaultLog := filepath.Join(runDir, "fburnd.log")

	daemonCmd.PersistentFlags().StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default from config)")
	daemonCmd.PersistentFlags().DurationVar(&flagDaemonInterval, "interval", 0, "Polling interval (default from config)")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonCron, "budget-cron", "", "Cron spec for budget checks (default from config)")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonPIDFile, "pid-file", defaultPID, "PID file path")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonLogFile, "log-file", defaultLog, "Log file path for detached mode")
	daemonCmd.PersistentFlags().IntVar(&flagDaemonEventsBuffer, "events-buffer", 0, "Max in-memory events retained (default from config)")
	daemonCmd.Flags().BoolVar(&flagDaemonNoNotify, "no-notify", false, "Do not publish alerts even if AMQP is configured")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(_ *cobra.Command, _ []string) error {
	pidFile := daemon.PIDFile{Path: flagDaemonPIDFile}
	switch {
	case flagDaemonDetach && flagDaemonChild:
		return errors.New("--detach and --child are mutually exclusive")
	case flagDaemonDetach:
		return startDaemonDetached(pidFile)
	default:
		return runDaemonForeground(pidFile)
	}
}

// startDaemonDetached re-executes the binary with --child, output going to
// the daemon log file.
func startDaemonDetached(pidFile daemon.PIDFile) error {
	if pid, err := pidFile.Lookup(); err == nil {
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving executable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	//nolint:gosec // path comes from the local user's flags
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening daemon log: %w", err)
	}
	defer func() { _ = logf.Close() }()

	args := slices.DeleteFunc(slices.Clone(os.Args[1:]), func(a string) bool {
		return a == "--detach" || strings.HasPrefix(a, "--detach=")
	})
	child := exec.Command(exe, append(args, "--child")...) //nolint:gosec // re-exec of our own binary
	child.Stdout, child.Stderr = logf, logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("starting detached daemon: %w", err)
	}

	fmt.Printf("  Started daemon (pid %d)\n", child.Process.Pid)
	fmt.Printf("  API: http://%s/v1/status\n", daemonAddr())
	fmt.Printf("  Log: %s\n", flagDaemonLogFile)
	return nil
}

func runDaemonForeground(pidFile daemon.PIDFile) error {
	addr := daemonAddr()
	if err := pidFile.Acquire(daemon.RunState{
		PID:       os.Getpid(),
		Addr:      addr,
		StartedAt: time.Now(),
		DataDir:   dataDir(),
	}); err != nil {
		return err
	}
	defer pidFile.Release()

	opts, closeCache := loadOptions(appCfg, nil)
	defer closeCache()
	// Every poll asks the API for fresh data; the cache stays the fallback.
	opts.Refresh = opts.Fetcher != nil

	cfg := daemon.Config{
		DataDir: opts.DataDir,
		Load: func(ctx context.Context) (*pipeline.LoadResult, error) {
			return pipeline.LoadSnapshot(ctx, opts)
		},
		Interval:        daemonInterval(),
		Addr:            addr,
		EventsBuffer:    daemonEventsBuffer(),
		BudgetCheckCron: daemonCron(),
		Logger:          logger,
	}

	if url := config.GetAMQPURL(appCfg); url != "" && !flagDaemonNoNotify {
		pub, err := notify.NewPublisher(url, appCfg.Notify.Exchange, appCfg.Notify.Queue, logger)
		if err != nil {
			// The broker may come up later; budget checks keep running without it.
			logger.WithError(err).Warn("alert publishing disabled")
		} else {
			defer func() { _ = pub.Close() }()
			cfg.Notifier = pub
		}
	}

	logger.WithFields(logrus.Fields{
		"addr":     addr,
		"interval": cfg.Interval.String(),
		"cron":     cfg.BudgetCheckCron,
		"notify":   cfg.Notifier != nil,
	}).Info("fburn daemon starting")
	fmt.Printf("  fburn daemon listening on http://%s\n", addr)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := daemon.New(cfg).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func daemonAddr() string {
	if flagDaemonAddr != "" {
		return flagDaemonAddr
	}
	return appCfg.Daemon.Addr
}

func daemonInterval() time.Duration {
	if flagDaemonInterval > 0 {
		return flagDaemonInterval
	}
	return time.Duration(appCfg.Daemon.IntervalSeconds) * time.Second
}

func daemonCron() string {
	if flagDaemonCron != "" {
		return flagDaemonCron
	}
	return appCfg.Daemon.BudgetCheckCron
}

func daemonEventsBuffer() int {
	if flagDaemonEventsBuffer > 0 {
		return flagDaemonEventsBuffer
	}
	return appCfg.Daemon.EventsBuffer
}

func runDaemonStatus(cmd *cobra.Command, _ []string) error {
	pidFile := daemon.PIDFile{Path: flagDaemonPIDFile}
	pid, err := pidFile.Lookup()
	switch {
	case errors.Is(err, daemon.ErrNotRunning):
		fmt.Println("  Daemon: not running")
		return nil
	case errors.Is(err, daemon.ErrStale):
		fmt.Printf("  Daemon: stale pid file (pid %d is gone)\n", pid)
		return nil
	case err != nil:
		return err
	}

	addr := daemonAddr()
	if st, err := pidFile.State(); err == nil && st.Addr != "" {
		addr = st.Addr
	}
	fmt.Printf("  Daemon PID: %d\n", pid)
	fmt.Printf("  Address:    http://%s\n", addr)

	st, err := daemon.FetchStatus(cmd.Context(), addr)
	if err != nil {
		fmt.Printf("  API:        %v\n", err)
		return nil
	}

	lastPoll := "pending"
	if !st.LastPollAt.IsZero() {
		lastPoll = st.LastPollAt.Local().Format(time.RFC3339)
	}
	sum := st.Summary
	fmt.Printf("  Last poll:  %s (%d polls, source %s)\n", lastPoll, st.PollCount, sum.Source)
	fmt.Printf("  Data:       %d accounts, %d transactions\n", sum.Accounts, sum.Transactions)
	fmt.Printf("  Balance:    %s\n", sum.TotalBalance.StringFixed(2))
	fmt.Printf("  Month:      income %s, expenses %s\n", sum.Income.StringFixed(2), sum.Expenses.StringFixed(2))
	fmt.Printf("  Budgets:    %d over limit, %d alerts (%d sent)\n", sum.OverBudget, sum.Alerts, st.AlertsSent)
	if !st.LastBudgetCheck.IsZero() {
		fmt.Printf("  Checked:    %s (cron %q)\n", st.LastBudgetCheck.Local().Format(time.RFC3339), st.BudgetCheckCron)
	}
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}
	return nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	pid, err := daemon.PIDFile{Path: flagDaemonPIDFile}.Stop(8 * time.Second)
	if err != nil {
		return err
	}
	fmt.Printf("  Stopped daemon (pid %d)\n", pid)
	return nil
}
