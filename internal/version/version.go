// Package version provides build version information and runtime metadata.
package version

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Name is the program name shown in version output.
const Name = "clickdash"

var (
	// These are set via ldflags at build time
	Version = ""
	Commit  = ""
	Date    = ""

	once sync.Once

	// gitOutput runs git with args and returns its stdout.
	gitOutput = func(ctx context.Context, args ...string) (string, error) {
		out, err := exec.CommandContext(ctx, "git", args...).Output()
		return string(out), err
	}

	gitTimeout = 2 * time.Second
)

func ensureInitialized() {
	once.Do(func() {
		if Date == "" {
			Date = time.Now().Format("2006-01-02")
		}
		if Commit == "" {
			Commit = runGit("unknown", "describe", "--always", "--dirty")
		}
		if Version == "" {
			Version = runGit("dev", "describe", "--tags", "--abbrev=0")
		}
	})
}

func runGit(fallback string, args ...string) string {
	ctx, cancel := context.WithTimeout(context.Background(), gitTimeout)
	defer cancel()

	out, err := gitOutput(ctx, args...)
	if err != nil {
		return fallback
	}
	if v := strings.TrimSpace(out); v != "" {
		return v
	}
	return fallback
}

// Reset clears the cached values so the next call resolves them again.
func Reset() {
	Version = ""
	Commit = ""
	Date = ""
	once = sync.Once{}
}

// GetVersion returns the release tag, or "dev".
func GetVersion() string {
	ensureInitialized()
	return Version
}

// GetCommit returns the git commit, or "unknown".
func GetCommit() string {
	ensureInitialized()
	return Commit
}

// GetDate returns the build date.
func GetDate() string {
	ensureInitialized()
	return Date
}

// Info returns the one-line version banner.
func Info() string {
	ensureInitialized()
	return fmt.Sprintf("%s %s (commit: %s, built: %s, %s/%s)",
		Name, Version, Commit, Date, runtime.GOOS, runtime.GOARCH)
}
