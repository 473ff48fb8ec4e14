// Package store persists small JSON documents so that a crash mid-write never
// leaves a half-written file behind.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/Archie-bot-stack/Archie/internal/logger"
)

// Load reads the document at path. A missing, locked or malformed file yields def.
func Load[T any](path string, def T) T {
	unlock, err := acquire(path)
	if err != nil {
		logger.Error("Failed to load document", "path", path, "error", err)
		return def
	}
	defer unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Error("Failed to load document", "path", path, "error", err)
		}
		return def
	}

	var doc T
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Error("Failed to load document", "path", path, "error", fmt.Errorf("decode: %w", err))
		return def
	}
	return doc
}

// Save writes doc to path atomically and reports whether it succeeded.
func Save[T any](path string, doc T) bool {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		logger.Error("Failed to save document", "path", path, "error", fmt.Errorf("encode: %w", err))
		return false
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		logger.Error("Failed to save document", "path", path, "error", err)
		return false
	}

	unlock, err := acquire(path)
	if err != nil {
		logger.Error("Failed to save document", "path", path, "error", err)
		return false
	}
	defer unlock()

	if err := writeAtomic(path, data); err != nil {
		logger.Error("Failed to save document", "path", path, "error", err)
		return false
	}
	return true
}

// writeAtomic writes path.tmp, syncs it and renames it over path.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open tmp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write tmp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync tmp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close tmp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename tmp file: %w", err)
	}
	return nil
}
