// Package filelock guards shared run-history files against concurrent
// writers. Multiple foundry processes may finish runs at the same time; the
// advisory lock plus atomic replace keeps the latest-result file and other
// shared artifacts consistent.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Guard is an advisory file lock scoped to a single path.
type Guard struct {
	lock *flock.Flock
	path string
}

// NewGuard creates a Guard for the given lock file path. The lock file is
// created on first acquisition.
func NewGuard(path string) *Guard {
	return &Guard{lock: flock.New(path), path: path}
}

// Acquire takes the exclusive lock, blocking until it is available.
func (g *Guard) Acquire() error {
	if err := g.lock.Lock(); err != nil {
		return fmt.Errorf("acquire lock %s: %w", g.path, err)
	}
	return nil
}

// TryAcquire takes the exclusive lock without blocking. It reports whether
// the lock was acquired.
func (g *Guard) TryAcquire() (bool, error) {
	held, err := g.lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("try lock %s: %w", g.path, err)
	}
	return held, nil
}

// Release gives the lock back.
func (g *Guard) Release() error {
	if err := g.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", g.path, err)
	}
	return nil
}

// WithLock runs fn while holding the exclusive lock, releasing it afterwards
// even when fn fails.
func (g *Guard) WithLock(fn func() error) error {
	if err := g.Acquire(); err != nil {
		return err
	}
	defer g.Release()
	return fn()
}

// ReplaceFile writes data to path atomically: the content lands in a temp
// file in the target directory, is synced, and then renamed over the target.
// Readers never observe a partial write; a failed write leaves any existing
// file untouched.
func ReplaceFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	// Temp file must live in the target directory so the rename stays on
	// one filesystem.
	tmp, err := os.CreateTemp(dir, ".replace-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file to %s: %w", path, err)
	}
	tmp = nil
	return nil
}
