// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/vipsbundle/vipsbundle/internal/config"
	"github.com/vipsbundle/vipsbundle/internal/issue"
	"github.com/vipsbundle/vipsbundle/pkg/types"
)

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v0.3.0"
		Commit = "abc1234"
		BuildDate = "2026-06-15T10:00:00Z"

		want := "v0.3.0 (commit: abc1234, built: 2026-06-15T10:00:00Z)"
		if got := getVersionString(); got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev build", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got := getVersionString(); got != "dev (built from source)" {
			t.Errorf("getVersionString() = %q", got)
		}
	})
}

func TestNewRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	root := NewRootCommand(NewApp(Dependencies{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}))
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"config", "linux", "macos", "verify", "windows"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing subcommand %q in %v", want, names)
		}
	}

	win, _, err := root.Find([]string{"windows"})
	if err != nil {
		t.Fatalf("Find(windows) error = %v", err)
	}
	for flag, short := range map[string]string{"arch": "a", "build-type": "b", "version": "V", "output": "o"} {
		f := win.Flags().Lookup(flag)
		if f == nil || f.Shorthand != short {
			t.Errorf("windows flag --%s: %+v", flag, f)
		}
	}
	if f := win.Flags().Lookup("version"); f.DefValue != "latest" {
		t.Errorf("--version default = %q", f.DefValue)
	}
}

func TestRootCommand_OutputRequired(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	root := NewRootCommand(NewApp(Dependencies{Stdout: &out, Stderr: &out, Config: stubConfig{cfg: config.DefaultConfig()}}))
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"linux"})

	err := root.ExecuteContext(t.Context())
	if err == nil || !strings.Contains(err.Error(), "output") {
		t.Errorf("expected required flag error, got %v", err)
	}
}

func TestRootCommand_ConfigErrorExitsWithSetupFailure(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	loadErr := issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource("/tmp/bad.cue").
		Wrap(errors.New("homebrew.binary: conflicting values")).
		BuildError()
	app := NewApp(Dependencies{Stdout: &stdout, Stderr: &stderr, Config: stubConfig{err: loadErr}})

	root := NewRootCommand(app)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"macos", "-o", t.TempDir()})

	err := root.ExecuteContext(t.Context())
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError, got %T: %v", err, err)
	}
	if exitErr.Code != types.ExitSetupFailure {
		t.Errorf("exit code = %d, want %d", exitErr.Code, types.ExitSetupFailure)
	}
	if !strings.Contains(stderr.String(), "failed to load configuration: /tmp/bad.cue") {
		t.Errorf("stderr missing error:\n%s", stderr.String())
	}
	if !strings.Contains(stderr.String(), "vipsbundle config init") {
		t.Errorf("stderr missing remediation page:\n%s", stderr.String())
	}
}

func TestGroupDigits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-45678, "-45,678"},
	}
	for _, tt := range tests {
		if got := groupDigits(tt.in); got != tt.want {
			t.Errorf("groupDigits(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := &ExitError{Code: 1, Err: cause}
	if !errors.Is(err, cause) || err.Error() != "boom" {
		t.Errorf("ExitError wrapping broken: %v", err)
	}
	if got := (&ExitError{Code: 3}).Error(); got != "exit status 3" {
		t.Errorf("Error() = %q", got)
	}
}
