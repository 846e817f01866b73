// SPDX-License-Identifier: MPL-2.0

package release

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	// ArchX64 selects 64-bit x86 builds.
	ArchX64 Arch = "x64"
	// ArchARM64 selects 64-bit ARM builds.
	ArchARM64 Arch = "arm64"

	// BuildWeb selects the build limited to web image formats.
	BuildWeb BuildType = "web"
	// BuildAll selects the build with every supported format.
	BuildAll BuildType = "all"
)

var (
	// ErrInvalidArch is the sentinel error wrapped by InvalidArchError.
	ErrInvalidArch = errors.New("invalid architecture")
	// ErrInvalidBuildType is the sentinel error wrapped by InvalidBuildTypeError.
	ErrInvalidBuildType = errors.New("invalid build type")
	// ErrNoMatchingAsset is the sentinel error wrapped by NoMatchingAssetError.
	ErrNoMatchingAsset = errors.New("no matching release asset")
)

type (
	// Arch is a Windows target architecture.
	Arch string

	// BuildType is the release flavor.
	BuildType string

	// InvalidArchError is returned when an Arch value is not recognized.
	InvalidArchError struct {
		Value string
	}

	// InvalidBuildTypeError is returned when a BuildType value is not recognized.
	InvalidBuildTypeError struct {
		Value string
	}

	// NoMatchingAssetError lists what the release offered when nothing matched.
	NoMatchingAssetError struct {
		Arch      Arch
		BuildType BuildType
		Available []string
	}
)

// ParseArch accepts x64, arm64 and their common aliases.
func ParseArch(s string) (Arch, error) {
	switch strings.ToLower(s) {
	case "x64", "x86_64", "amd64":
		return ArchX64, nil
	case "arm64", "aarch64":
		return ArchARM64, nil
	default:
		return "", &InvalidArchError{Value: s}
	}
}

// Token is the architecture marker used in upstream asset names.
func (a Arch) Token() string {
	if a == ArchX64 {
		return "w64"
	}
	return string(a)
}

// String returns the string representation of the Arch.
func (a Arch) String() string { return string(a) }

// ParseBuildType accepts web and all.
func ParseBuildType(s string) (BuildType, error) {
	switch b := BuildType(strings.ToLower(s)); b {
	case BuildWeb, BuildAll:
		return b, nil
	default:
		return "", &InvalidBuildTypeError{Value: s}
	}
}

// String returns the string representation of the BuildType.
func (b BuildType) String() string { return string(b) }

// FindAsset picks the zip for arch and buildType. Names containing "ffi"
// are used only when no other asset matches.
func FindAsset(rel *Release, arch Arch, buildType BuildType) (Asset, error) {
	var fallback *Asset
	for i := range rel.Assets {
		a := &rel.Assets[i]
		if !strings.Contains(a.Name, arch.Token()) || !strings.Contains(a.Name, string(buildType)) || !strings.HasSuffix(a.Name, ".zip") {
			continue
		}
		if !strings.Contains(a.Name, "ffi") {
			return *a, nil
		}
		if fallback == nil {
			fallback = a
		}
	}
	if fallback != nil {
		return *fallback, nil
	}

	names := make([]string, 0, len(rel.Assets))
	for _, a := range rel.Assets {
		names = append(names, a.Name)
	}
	return Asset{}, &NoMatchingAssetError{Arch: arch, BuildType: buildType, Available: names}
}

// VersionFromFilename returns the first dash-separated part of name that
// starts with a digit: "vips-dev-w64-web-8.16.0-static.zip" gives "8.16.0".
func VersionFromFilename(name string) string {
	for part := range strings.SplitSeq(strings.TrimSuffix(name, ".zip"), "-") {
		if part != "" && unicode.IsDigit(rune(part[0])) {
			return part
		}
	}
	return "unknown"
}

// Error implements the error interface.
func (e *InvalidArchError) Error() string {
	return fmt.Sprintf("invalid architecture %q (valid: x64, arm64)", e.Value)
}

// Unwrap returns ErrInvalidArch for errors.Is() compatibility.
func (e *InvalidArchError) Unwrap() error { return ErrInvalidArch }

// Error implements the error interface.
func (e *InvalidBuildTypeError) Error() string {
	return fmt.Sprintf("invalid build type %q (valid: web, all)", e.Value)
}

// Unwrap returns ErrInvalidBuildType for errors.Is() compatibility.
func (e *InvalidBuildTypeError) Unwrap() error { return ErrInvalidBuildType }

// Error implements the error interface.
func (e *NoMatchingAssetError) Error() string {
	return fmt.Sprintf("no download for architecture %s, build type %s (%d assets available)", e.Arch, e.BuildType, len(e.Available))
}

// Unwrap returns ErrNoMatchingAsset for errors.Is() compatibility.
func (e *NoMatchingAssetError) Unwrap() error { return ErrNoMatchingAsset }
