// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"testing"
)

func TestTargetValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   Target
		wantErr bool
	}{
		{TargetLinux, false},
		{TargetMacOS, false},
		{TargetWindows, false},
		{"", true},
		{"darwin", true},
		{"freebsd", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.value), func(t *testing.T) {
			t.Parallel()

			err := tt.value.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Target(%q).Validate() error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidTarget) {
				t.Errorf("error does not wrap ErrInvalidTarget: %v", err)
			}
		})
	}
}

func TestNormalizeArch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"amd64", "x86_64"},
		{"x86_64", "x86_64"},
		{"arm64", "arm64"},
		{"aarch64", "arm64"},
		{"riscv64", "riscv64"},
	}

	for _, tt := range tests {
		if got := NormalizeArch(tt.in); got != tt.want {
			t.Errorf("NormalizeArch(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHostTargetIsValid(t *testing.T) {
	t.Parallel()

	if err := HostTarget().Validate(); err != nil {
		t.Errorf("HostTarget() returned invalid target: %v", err)
	}
}

func TestIsWindowsReservedName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{"CON", true},
		{"nul.dll", true},
		{"bin/aux.tar.gz", true},
		{`bin\com1.txt`, true},
		{"libvips-42.dll", false},
		{"console.dll", false},
		{"lpt10", false},
	}
	for _, tt := range tests {
		if got := IsWindowsReservedName(tt.name); got != tt.want {
			t.Errorf("IsWindowsReservedName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
