package version

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"
)

// fakeGit answers git calls by subcommand flag and records them.
type fakeGit struct {
	answers map[string]string
	fail    map[string]bool
	calls   [][]string
}

func (f *fakeGit) run(_ context.Context, args ...string) (string, error) {
	f.calls = append(f.calls, args)
	flag := ""
	if len(args) > 1 {
		flag = args[1]
	}
	if f.fail[flag] {
		return "", errors.New("exit status 128")
	}
	return f.answers[flag], nil
}

func useGit(t *testing.T, run func(context.Context, ...string) (string, error)) {
	t.Helper()
	orig := gitOutput
	gitOutput = run
	Reset()
	t.Cleanup(func() {
		gitOutput = orig
		Reset()
	})
}

func TestResolveFromGit(t *testing.T) {
	tests := []struct {
		name       string
		git        *fakeGit
		wantVer    string
		wantCommit string
	}{
		{
			name:       "tag and commit",
			git:        &fakeGit{answers: map[string]string{"--tags": "v1.2.0\n", "--always": "3f2a1bc-dirty\n"}},
			wantVer:    "v1.2.0",
			wantCommit: "3f2a1bc-dirty",
		},
		{
			name:       "no tags",
			git:        &fakeGit{answers: map[string]string{"--always": "3f2a1bc"}, fail: map[string]bool{"--tags": true}},
			wantVer:    "dev",
			wantCommit: "3f2a1bc",
		},
		{
			name:       "blank output",
			git:        &fakeGit{answers: map[string]string{"--tags": "  \n", "--always": ""}},
			wantVer:    "dev",
			wantCommit: "unknown",
		},
		{
			name:       "not a repository",
			git:        &fakeGit{fail: map[string]bool{"--tags": true, "--always": true}},
			wantVer:    "dev",
			wantCommit: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useGit(t, tt.git.run)

			if got := GetVersion(); got != tt.wantVer {
				t.Errorf("GetVersion() = %q, want %q", got, tt.wantVer)
			}
			if got := GetCommit(); got != tt.wantCommit {
				t.Errorf("GetCommit() = %q, want %q", got, tt.wantCommit)
			}
		})
	}
}

func TestLdflagsWin(t *testing.T) {
	git := &fakeGit{answers: map[string]string{"--tags": "v0.0.1", "--always": "abc"}}
	useGit(t, git.run)

	Version = "v3.0.0"
	Commit = "feedbee"
	Date = "2026-01-02"

	if GetVersion() != "v3.0.0" || GetCommit() != "feedbee" || GetDate() != "2026-01-02" {
		t.Errorf("got %s/%s/%s, ldflags values should be kept", GetVersion(), GetCommit(), GetDate())
	}
	if len(git.calls) != 0 {
		t.Errorf("git called %d times, want 0", len(git.calls))
	}
}

func TestResolvedOnce(t *testing.T) {
	git := &fakeGit{answers: map[string]string{"--tags": "v1.0.0", "--always": "abc"}}
	useGit(t, git.run)

	GetVersion()
	GetCommit()
	Info()
	if len(git.calls) != 2 {
		t.Errorf("git called %d times, want 2", len(git.calls))
	}

	Reset()
	if Version != "" || Commit != "" || Date != "" {
		t.Error("Reset should clear the cached values")
	}
	GetVersion()
	if len(git.calls) != 4 {
		t.Errorf("git called %d times after Reset, want 4", len(git.calls))
	}
}

func TestGitTimeout(t *testing.T) {
	useGit(t, func(ctx context.Context, _ ...string) (string, error) {
		<-ctx.Done()
		return "late", ctx.Err()
	})

	orig := gitTimeout
	gitTimeout = 10 * time.Millisecond
	t.Cleanup(func() { gitTimeout = orig })

	start := time.Now()
	if got := runGit("fallback", "describe", "--tags"); got != "fallback" {
		t.Errorf("runGit() = %q, want fallback", got)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("runGit took %v, the timeout should stop it", elapsed)
	}
}

func TestDefaultDate(t *testing.T) {
	useGit(t, (&fakeGit{}).run)

	if got, want := GetDate(), time.Now().Format("2006-01-02"); got != want {
		t.Errorf("GetDate() = %q, want %q", got, want)
	}
}

func TestInfo(t *testing.T) {
	useGit(t, (&fakeGit{}).run)
	Version = "v2.1.0"
	Commit = "abc1234"
	Date = "2026-03-04"

	info := Info()
	for _, want := range []string{
		Name + " v2.1.0",
		"commit: abc1234",
		"built: 2026-03-04",
		runtime.GOOS + "/" + runtime.GOARCH,
	} {
		if !strings.Contains(info, want) {
			t.Errorf("Info() = %q, missing %q", info, want)
		}
	}
}
