package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

var (
	// ErrNotRunning is returned when no pid file exists.
	ErrNotRunning = errors.New("daemon: not running")
	// ErrStale is returned when the pid file names a dead process.
	ErrStale = errors.New("daemon: stale pid file")
)

// RunState is written next to the pid file while the daemon runs.
type RunState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	DataDir   string    `json:"data_dir"`
}

// PIDFile guards a single daemon instance per path. A JSON RunState is kept
// alongside it at Path + ".json".
type PIDFile struct {
	Path string
}

func (p PIDFile) statePath() string { return p.Path + ".json" }

// Lookup returns the recorded pid. The error is ErrNotRunning when there is
// no pid file and ErrStale when the process is gone.
func (p PIDFile) Lookup() (int, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, ErrNotRunning
		}
		return 0, fmt.Errorf("reading pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", p.Path)
	}
	if !processAlive(pid) {
		return pid, ErrStale
	}
	return pid, nil
}

// Acquire records st.PID, replacing a stale pid file. It fails with an
// error wrapping the live pid when another daemon holds the file.
func (p PIDFile) Acquire(st RunState) error {
	switch pid, err := p.Lookup(); {
	case err == nil:
		return fmt.Errorf("daemon already running (pid %d)", pid)
	case errors.Is(err, ErrStale):
		p.Release()
	case !errors.Is(err, ErrNotRunning):
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p.Path), 0o750); err != nil {
		return fmt.Errorf("creating run directory: %w", err)
	}
	if err := os.WriteFile(p.Path, []byte(strconv.Itoa(st.PID)+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing pid file: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	// The state file only enriches `daemon status`.
	_ = os.WriteFile(p.statePath(), append(data, '\n'), 0o600)
	return nil
}

// Release removes the pid and state files.
func (p PIDFile) Release() {
	_ = os.Remove(p.Path)
	_ = os.Remove(p.statePath())
}

// State reads the RunState written by Acquire.
func (p PIDFile) State() (RunState, error) {
	var st RunState
	data, err := os.ReadFile(p.statePath())
	if err != nil {
		return st, err
	}
	err = json.Unmarshal(data, &st)
	return st, err
}

// Stop sends SIGTERM to the recorded process and waits up to timeout for it
// to exit. It returns the pid that was stopped.
func (p PIDFile) Stop(timeout time.Duration) (int, error) {
	pid, err := p.Lookup()
	if errors.Is(err, ErrStale) {
		p.Release()
		return pid, ErrNotRunning
	}
	if err != nil {
		return 0, err
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return pid, fmt.Errorf("finding daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return pid, fmt.Errorf("signalling daemon process: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			p.Release()
			return pid, nil
		}
		time.Sleep(150 * time.Millisecond)
	}
	return pid, fmt.Errorf("daemon (pid %d) did not exit within %s", pid, timeout)
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
