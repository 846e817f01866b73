// SPDX-License-Identifier: MPL-2.0

package brew

import (
	"errors"
	"strings"
	"testing"

	"github.com/vipsbundle/vipsbundle/internal/testutil"
)

const infoInstalled = `{
  "formulae": [
    {
      "name": "vips",
      "versions": {"stable": "8.16.0", "head": "HEAD", "bottle": true},
      "installed": [{"version": "8.15.5_1", "installed_as_dependency": false}]
    }
  ],
  "casks": []
}`

const infoNotInstalled = `{"formulae": [{"name": "vips", "versions": {"stable": "8.16.0"}, "installed": []}], "casks": []}`

func TestParseVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"installed version preferred", infoInstalled, "8.15.5_1"},
		{"stable fallback", infoNotInstalled, "8.16.0"},
		{"empty formulae", `{"formulae": []}`, UnknownVersion},
		{"not json", "Error: No available formula", UnknownVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ParseVersion(tt.in); got != tt.want {
				t.Errorf("ParseVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClient_Prefix(t *testing.T) {
	t.Parallel()

	logger, _ := testutil.NewLogger()
	exec := testutil.NewFakeExecutor().
		On(testutil.FakeResponse{Stdout: "/home/linuxbrew/.linuxbrew\n"}, "brew", "--prefix").
		On(testutil.FakeResponse{Stdout: "/home/linuxbrew/.linuxbrew/opt/vips\n"}, "brew", "--prefix", "vips").
		On(testutil.FakeResponse{ExitCode: 1, Stderr: "Error: No available formula with the name \"nope\"."}, "brew", "--prefix", "nope")
	c := NewClient(exec, "", logger)

	if got, err := c.Prefix(t.Context()); err != nil || got != "/home/linuxbrew/.linuxbrew" {
		t.Errorf("Prefix() = %q, %v", got, err)
	}
	if got, err := c.PackagePrefix(t.Context(), "vips"); err != nil || got != "/home/linuxbrew/.linuxbrew/opt/vips" {
		t.Errorf("PackagePrefix(vips) = %q, %v", got, err)
	}

	_, err := c.PackagePrefix(t.Context(), "nope")
	if !errors.Is(err, ErrPrefixNotFound) {
		t.Errorf("PackagePrefix(nope) error = %v, want ErrPrefixNotFound", err)
	}
	if !strings.Contains(err.Error(), "No available formula") {
		t.Errorf("stderr should be carried in the error, got %v", err)
	}
}

func TestClient_PrefixEmptyOutput(t *testing.T) {
	t.Parallel()

	logger, _ := testutil.NewLogger()
	c := NewClient(testutil.NewFakeExecutor(), "/opt/homebrew/bin/brew", logger)

	if _, err := c.Prefix(t.Context()); !errors.Is(err, ErrPrefixNotFound) {
		t.Errorf("Prefix() error = %v, want ErrPrefixNotFound", err)
	}
}

func TestClient_PackageVersion(t *testing.T) {
	t.Parallel()

	logger, logs := testutil.NewLogger()
	exec := testutil.NewFakeExecutor().
		On(testutil.FakeResponse{Stdout: infoInstalled}, "brew", "info", "--json=v2", "vips").
		Missing("nobrew")

	if got := NewClient(exec, "", logger).PackageVersion(t.Context(), "vips"); got != "8.15.5_1" {
		t.Errorf("PackageVersion() = %q", got)
	}
	if got := NewClient(exec, "nobrew", logger).PackageVersion(t.Context(), "vips"); got != UnknownVersion {
		t.Errorf("PackageVersion() without brew = %q, want %q", got, UnknownVersion)
	}
	if !strings.Contains(logs.String(), "could not read formula info") {
		t.Errorf("expected warning, got:\n%s", logs.String())
	}
}
