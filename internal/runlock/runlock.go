// Package runlock serializes scanstamp invocations per working directory
// through an advisory lock file. The lock is JSON so an operator can read
// who holds it; staleness is decided by probing the recorded pid, so a
// crashed run never wedges the directory.
package runlock

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Lock describes the run holding the lock file.
type Lock struct {
	RunID     string    `json:"run_id"`
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
}

// HeldError reports that a live run already holds the lock.
type HeldError struct {
	Path string
	Lock Lock
}

func (e *HeldError) Error() string {
	return fmt.Sprintf("another scanstamp run holds %s (pid %d, started %s)",
		e.Path, e.Lock.PID, e.Lock.StartedAt.Format(time.RFC3339))
}

// Manager acquires and releases the lock file. Alive and Now are
// injectable so tests can simulate live and dead owners.
type Manager struct {
	Fs    afero.Fs
	Alive func(pid int) bool // nil means ProcessAlive
	Now   func() time.Time   // nil means time.Now
}

// Guard is a held lock. Release it when the run finishes.
type Guard struct {
	fs   afero.Fs
	path string
	lock Lock
}

// Path returns the lock file path the guard owns.
func (g *Guard) Path() string {
	return g.path
}

// Acquire takes the lock at path. A lock held by a live process refuses
// the new run with a HeldError; a lock left behind by a dead process is
// replaced.
func (m *Manager) Acquire(path string) (*Guard, error) {
	data, err := afero.ReadFile(m.Fs, path)
	if err == nil {
		var prev Lock
		// An unparseable lock file is treated as stale debris.
		if json.Unmarshal(data, &prev) == nil && m.alive(prev.PID) {
			return nil, &HeldError{Path: path, Lock: prev}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading run lock: %w", err)
	}

	lock := Lock{
		RunID:     uuid.New().String(),
		PID:       os.Getpid(),
		StartedAt: m.now(),
	}
	if err := m.write(path, lock); err != nil {
		return nil, err
	}
	return &Guard{fs: m.Fs, path: path, lock: lock}, nil
}

// Release removes the lock file. Releasing an already-removed lock is not
// an error.
func (g *Guard) Release() error {
	if err := g.fs.Remove(g.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("releasing run lock: %w", err)
	}
	return nil
}

// write persists the lock atomically via a temp file in the same directory.
func (m *Manager) write(path string, lock Lock) (err error) {
	data, err := json.Marshal(lock)
	if err != nil {
		return fmt.Errorf("writing run lock: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := m.Fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("writing run lock: %w", err)
		}
	}
	tmp, err := afero.TempFile(m.Fs, filepath.Dir(path), "scanstamp-lock-*.tmp")
	if err != nil {
		return fmt.Errorf("writing run lock: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up the temp file on any error path.
	defer func() {
		if err != nil {
			m.Fs.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing run lock: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("writing run lock: %w", err)
	}

	if err = m.Fs.Rename(tmpName, path); err != nil {
		return fmt.Errorf("writing run lock: %w", err)
	}
	return nil
}

func (m *Manager) alive(pid int) bool {
	if m.Alive != nil {
		return m.Alive(pid)
	}
	return ProcessAlive(pid)
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// ProcessAlive probes a pid with signal 0. EPERM means the process exists
// but belongs to another user, which still counts as alive.
func ProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	return errors.Is(err, syscall.EPERM)
}
