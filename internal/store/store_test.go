package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type doc struct {
	Year  int            `json:"year"`
	Count map[string]int `json:"count"`
}

type unencodable struct{}

func (unencodable) MarshalJSON() ([]byte, error) { return nil, errors.New("boom") }

func shortLocks(t *testing.T) {
	t.Helper()
	origTimeout, origInterval := lockTimeout, lockInterval
	lockTimeout, lockInterval = 200*time.Millisecond, 10*time.Millisecond
	t.Cleanup(func() {
		lockTimeout, lockInterval = origTimeout, origInterval
	})
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "doc.json")

	in := doc{Year: 2026, Count: map[string]int{"lifetop": 3}}
	if !Save(path, in) {
		t.Fatal("Save() = false")
	}

	out := Load(path, doc{})
	if out.Year != 2026 || out.Count["lifetop"] != 3 {
		t.Errorf("Load() = %+v", out)
	}

	for _, leftover := range []string{path + ".tmp", path + ".lock"} {
		if _, err := os.Stat(leftover); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%s left behind", filepath.Base(leftover))
		}
	}
}

func TestLoad_MissingReturnsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	got := Load(path, doc{Year: 1999})
	if got.Year != 1999 {
		t.Errorf("Load() = %+v, want default", got)
	}
}

func TestLoad_MalformedReturnsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	got := Load(path, doc{Year: 1999})
	if got.Year != 1999 {
		t.Errorf("Load() = %+v, want default", got)
	}
}

func TestInterruptedSaveKeepsOldDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	if !Save(path, doc{Year: 2025}) {
		t.Fatal("Save() = false")
	}

	// A crash after writing part of the tmp file but before the rename.
	if err := os.WriteFile(path+".tmp", []byte(`{"year": 20`), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := Load(path, doc{}); got.Year != 2025 {
		t.Errorf("Load() after interrupted save = %+v, want year 2025", got)
	}

	// The next save overwrites the leftover tmp file.
	if !Save(path, doc{Year: 2026}) {
		t.Fatal("Save() = false")
	}
	if got := Load(path, doc{}); got.Year != 2026 {
		t.Errorf("Load() = %+v, want year 2026", got)
	}
}

func TestSave_EncodeFailureKeepsOldDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	if !Save(path, doc{Year: 2025}) {
		t.Fatal("Save() = false")
	}

	if Save(path, unencodable{}) {
		t.Fatal("Save() of an unencodable value should fail")
	}
	if got := Load(path, doc{}); got.Year != 2025 {
		t.Errorf("Load() = %+v, want year 2025", got)
	}
}

func TestLockTimeout(t *testing.T) {
	shortLocks(t)
	path := filepath.Join(t.TempDir(), "doc.json")
	if !Save(path, doc{Year: 2025}) {
		t.Fatal("Save() = false")
	}

	// A fresh lock held by someone else.
	if err := os.WriteFile(path+".lock", []byte("1\n1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if Save(path, doc{Year: 2026}) {
		t.Error("Save() should fail while the lock is held")
	}
	if got := Load(path, doc{Year: 7}); got.Year != 7 {
		t.Errorf("Load() = %+v, want default while locked", got)
	}
}

func TestStaleLockIsRemoved(t *testing.T) {
	shortLocks(t)
	path := filepath.Join(t.TempDir(), "doc.json")
	lockFile := path + ".lock"
	if err := os.WriteFile(lockFile, []byte("1\n1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(lockFile, old, old); err != nil {
		t.Fatal(err)
	}

	if !Save(path, doc{Year: 2026}) {
		t.Fatal("Save() should break a stale lock")
	}
	if got := Load(path, doc{}); got.Year != 2026 {
		t.Errorf("Load() = %+v", got)
	}
}

func TestDiscardStale_KeepsLockTakenAfterStat(t *testing.T) {
	lockFile := filepath.Join(t.TempDir(), "doc.json.lock")
	if err := os.WriteFile(lockFile, []byte("1\n1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(lockFile, old, old); err != nil {
		t.Fatal(err)
	}
	seen, err := os.Stat(lockFile)
	if err != nil {
		t.Fatal(err)
	}

	// Another waiter breaks the stale lock and a third writer takes a fresh one.
	if err := os.Remove(lockFile); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(lockFile, []byte("2\n2\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if discardStale(lockFile, seen, time.Minute) {
		t.Error("discardStale() removed a fresh lock")
	}
	data, err := os.ReadFile(lockFile)
	if err != nil || string(data) != "2\n2\n" {
		t.Errorf("lock file = %q, %v; want the fresh lock restored", data, err)
	}
	if leftovers, _ := filepath.Glob(lockFile + ".stale-*"); len(leftovers) != 0 {
		t.Errorf("leftover files: %v", leftovers)
	}
}

func TestBreakStale(t *testing.T) {
	tests := []struct {
		name     string
		age      time.Duration
		wantGone bool
	}{
		{"Stale", time.Hour, true},
		{"Fresh", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lockFile := filepath.Join(t.TempDir(), "doc.json.lock")
			if err := os.WriteFile(lockFile, []byte("1\n1\n"), 0o600); err != nil {
				t.Fatal(err)
			}
			mtime := time.Now().Add(-tt.age)
			if err := os.Chtimes(lockFile, mtime, mtime); err != nil {
				t.Fatal(err)
			}

			if got := breakStale(lockFile, time.Minute); got != tt.wantGone {
				t.Errorf("breakStale() = %v, want %v", got, tt.wantGone)
			}
			_, err := os.Stat(lockFile)
			if gone := errors.Is(err, os.ErrNotExist); gone != tt.wantGone {
				t.Errorf("lock removed = %v, want %v", gone, tt.wantGone)
			}
			if leftovers, _ := filepath.Glob(lockFile + ".stale-*"); len(leftovers) != 0 {
				t.Errorf("leftover files: %v", leftovers)
			}
		})
	}
}
