package sweep

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
)

var findProcessFunc = ps.FindProcess

// ErrWatcherRunning is returned when another live watcher holds the lock
type ErrWatcherRunning struct {
	PID int
}

func (e *ErrWatcherRunning) Error() string {
	return fmt.Sprintf("another sweep watcher is already running (pid %d)", e.PID)
}

// Lock is a PID lockfile in the data directory
type Lock struct {
	path string
}

func NewLock(dir string) *Lock {
	return &Lock{path: filepath.Join(dir, constants.WatchLockfileName)}
}

func (l *Lock) Path() string {
	return l.path
}

// Acquire writes the current PID to the lockfile. A lockfile left behind by
// a process that is no longer running is replaced.
func (l *Lock) Acquire() error {
	if pid, ok := l.holder(); ok {
		return &ErrWatcherRunning{PID: pid}
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0700); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}
	if err := os.WriteFile(l.path, []byte(strconv.Itoa(os.Getpid())), 0600); err != nil {
		return fmt.Errorf("failed to write lockfile: %w", err)
	}
	return nil
}

// Release removes the lockfile if this process owns it
func (l *Lock) Release() error {
	content, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read lockfile: %w", err)
	}
	if strings.TrimSpace(string(content)) != strconv.Itoa(os.Getpid()) {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lockfile: %w", err)
	}
	return nil
}

// holder returns the PID of a live watcher holding the lock
func (l *Lock) holder() (int, bool) {
	content, err := os.ReadFile(l.path)
	if err != nil {
		return 0, false
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		logger.Warn("Ignoring malformed lockfile", "path", l.path)
		return 0, false
	}
	if pid == os.Getpid() {
		return 0, false
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		logger.Info("Replacing stale lockfile", "path", l.path, "pid", pid)
		return 0, false
	}
	if !strings.HasPrefix(process.Executable(), constants.AppName) {
		logger.Info("Lockfile PID belongs to another program", "pid", pid, "executable", process.Executable())
		return 0, false
	}
	return pid, true
}
