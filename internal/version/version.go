// Package version provides build version information and runtime metadata.
package version

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"
)

var (
	// These are set via ldflags at build time
	Version = ""
	Commit  = ""
	Date    = ""

	once sync.Once

	execCommand = exec.CommandContext
)

func ensureInitialized() {
	once.Do(func() {
		if Date == "" {
			Date = time.Now().Format("2006-01-02")
		}
		if Commit == "" {
			Commit = gitDescribe("unknown", "--always", "--dirty")
		}
		if Version == "" {
			Version = strings.TrimPrefix(gitDescribe("dev", "--tags", "--abbrev=0"), "v")
		}
	})
}

// gitDescribe runs git describe with args, returning fallback on failure or empty output.
func gitDescribe(fallback string, args ...string) string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cmd := execCommand(ctx, "git", append([]string{"describe"}, args...)...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return fallback
	}
	if v := strings.TrimSpace(out.String()); v != "" {
		return v
	}
	return fallback
}

// Info returns a one-line build description.
func Info() string {
	ensureInitialized()
	return fmt.Sprintf("archie %s (commit: %s, built: %s, %s/%s)",
		Version, Commit, Date, runtime.GOOS, runtime.GOARCH)
}

// UserAgent is sent on outbound HTTP requests.
func UserAgent() string {
	ensureInitialized()
	return "Archie/" + Version
}

// Current returns the version string.
func Current() string {
	ensureInitialized()
	return Version
}
