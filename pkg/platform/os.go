// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"fmt"
	"runtime"
)

// OS name constants for runtime.GOOS comparisons.
// Centralizes the string literals to avoid scattered magic strings.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

const (
	// TargetLinux bundles ELF shared objects from Linuxbrew.
	TargetLinux Target = "linux"
	// TargetMacOS bundles Mach-O dylibs from Homebrew.
	TargetMacOS Target = "macos"
	// TargetWindows bundles DLLs from a pre-built release archive.
	TargetWindows Target = "windows"
)

// ErrInvalidTarget is the sentinel error wrapped by InvalidTargetError.
var ErrInvalidTarget = errors.New("invalid target platform")

type (
	// Target identifies the platform a bundle is produced for.
	Target string

	// InvalidTargetError is returned when a Target value is not recognized.
	InvalidTargetError struct {
		Value Target
	}
)

// Error implements the error interface.
func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("invalid target platform %q (valid: linux, macos, windows)", e.Value)
}

// Unwrap returns ErrInvalidTarget for errors.Is() compatibility.
func (e *InvalidTargetError) Unwrap() error { return ErrInvalidTarget }

// String returns the string representation of the Target.
func (t Target) String() string { return string(t) }

// Validate returns an error if the Target is not one of the known platforms.
func (t Target) Validate() error {
	switch t {
	case TargetLinux, TargetMacOS, TargetWindows:
		return nil
	default:
		return &InvalidTargetError{Value: t}
	}
}

// HostTarget returns the Target matching the running operating system.
// Unknown systems fall back to TargetLinux, which shares the ELF toolchain
// with most other Unix variants.
func HostTarget() Target {
	switch runtime.GOOS {
	case Darwin:
		return TargetMacOS
	case Windows:
		return TargetWindows
	default:
		return TargetLinux
	}
}

// HostArch returns the machine architecture of the running process using the
// naming found in Homebrew bottles and uname output ("x86_64", "arm64").
func HostArch() string {
	return NormalizeArch(runtime.GOARCH)
}

// NormalizeArch maps Go and kernel architecture spellings onto "x86_64" and
// "arm64". Anything else is returned unchanged.
func NormalizeArch(arch string) string {
	switch arch {
	case "x86_64", "amd64":
		return "x86_64"
	case "aarch64", "arm64":
		return "arm64"
	default:
		return arch
	}
}
