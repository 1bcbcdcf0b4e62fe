package syncer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/clubdesk/internal/constants"
	"github.com/julianstephens/clubdesk/internal/logger"
)

var findProcessFunc = ps.FindProcess

// ErrAlreadyRunning is returned when another live watcher holds the lockfile.
var ErrAlreadyRunning = errors.New("another 'clubdesk sync --watch' is already running")

// Lock is a held watcher lockfile.
type Lock struct {
	path string
}

// AcquireLock writes the current pid to path. A lockfile left behind by a
// process that no longer runs, or that is not clubdesk, is replaced.
func AcquireLock(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	if pid, err := readLockPID(path); err == nil {
		if holderAlive(pid) {
			return nil, fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
		}
		logger.Warn("Removing stale sync lockfile", "path", path, "pid", pid)
		_ = os.Remove(path)
	} else if !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Removing unreadable sync lockfile", "path", path, "error", err)
		_ = os.Remove(path)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("failed to create lockfile: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to write lockfile: %w", err)
	}
	return &Lock{path: path}, nil
}

// Release removes the lockfile. It is safe to call more than once.
func (l *Lock) Release() {
	if l == nil || l.path == "" {
		return
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to remove sync lockfile", "path", l.path, "error", err)
	}
	l.path = ""
}

func readLockPID(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return 0, errors.New("invalid process ID in lockfile")
	}
	return pid, nil
}

func holderAlive(pid int) bool {
	if pid == os.Getpid() {
		return false
	}
	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return false
	}
	return strings.HasPrefix(process.Executable(), constants.AppName)
}

// LockPath returns the watcher lockfile inside dir.
func LockPath(dir string) string {
	return filepath.Join(dir, constants.WatchLockfileName)
}
