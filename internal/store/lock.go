package store

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Archie-bot-stack/Archie/internal/logger"
)

// ErrLockTimeout is returned when a lock is still held after the wait bound.
var ErrLockTimeout = errors.New("lock wait timed out")

var (
	lockTimeout  = 5 * time.Second
	lockInterval = 100 * time.Millisecond
)

// acquire takes the advisory lock guarding path. The returned func releases it.
// A lock file older than twice the timeout is assumed abandoned and removed.
func acquire(path string) (func(), error) {
	lockFile := path + ".lock"
	deadline := time.Now().Add(lockTimeout)

	for {
		f, err := os.OpenFile(lockFile, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			if _, werr := fmt.Fprintf(f, "%d\n%d\n", time.Now().Unix(), os.Getpid()); werr != nil {
				logger.Warn("Failed to write lock file", "file", lockFile, "error", werr)
			}
			if cerr := f.Close(); cerr != nil {
				logger.Warn("Failed to close lock file", "file", lockFile, "error", cerr)
			}
			return func() { release(lockFile) }, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}

		if breakStale(lockFile, 2*lockTimeout) {
			continue
		}

		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("%s: %w", lockFile, ErrLockTimeout)
		}
		time.Sleep(lockInterval)
	}
}

func release(lockFile string) {
	if err := os.Remove(lockFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Error("Failed to release lock", "file", lockFile, "error", err)
	}
}

// breakStale discards lockFile when it is older than age and reports whether
// the caller should retry at once.
func breakStale(lockFile string, age time.Duration) bool {
	info, err := os.Stat(lockFile)
	if err != nil {
		// Vanished between the create attempt and the stat; just retry.
		return false
	}
	if time.Since(info.ModTime()) <= age {
		return false
	}
	return discardStale(lockFile, info, age)
}

// discardStale moves the lock seen as info aside and deletes it only if the
// moved file is still that same stale lock. Anything else is a lock taken
// after the stat, and it is put back.
func discardStale(lockFile string, seen os.FileInfo, age time.Duration) bool {
	aside := lockFile + ".stale-" + uuid.NewString()
	if err := os.Rename(lockFile, aside); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return true
		}
		logger.Error("Failed to move stale lock file", "file", lockFile, "error", err)
		return false
	}

	moved, err := os.Stat(aside)
	if err == nil && os.SameFile(seen, moved) && time.Since(moved.ModTime()) > age {
		logger.Warn("Removing stale lock file", "file", lockFile)
		if rerr := os.Remove(aside); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			logger.Error("Failed to remove stale lock file", "file", aside, "error", rerr)
		}
		return true
	}

	if lerr := os.Link(aside, lockFile); lerr != nil {
		logger.Error("Failed to restore live lock file", "file", lockFile, "error", lerr)
	}
	if rerr := os.Remove(aside); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
		logger.Warn("Failed to remove moved lock file", "file", aside, "error", rerr)
	}
	return false
}
