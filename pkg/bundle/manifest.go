// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	// LibDir holds the copied libraries.
	LibDir = "lib"
	// IncludeDir holds copied headers.
	IncludeDir = "include"
	// PkgConfigDir is relative to LibDir.
	PkgConfigDir = "pkgconfig"
	// VersionFileName is the plain-text summary.
	VersionFileName = "VERSION.txt"
	// ManifestFileName is the TOML manifest.
	ManifestFileName = "manifest.toml"
)

// Manifest records where a bundle came from and what it contains.
type Manifest struct {
	Platform     string    `toml:"platform"`
	Version      string    `toml:"version"`
	Architecture string    `toml:"architecture"`
	Prefix       string    `toml:"prefix,omitempty"`
	ReleaseTag   string    `toml:"release_tag,omitempty"`
	BuildType    string    `toml:"build_type,omitempty"`
	SourcePage   string    `toml:"source_page,omitempty"`
	DownloadURL  string    `toml:"download_url,omitempty"`
	Filename     string    `toml:"filename,omitempty"`
	SHA256       string    `toml:"sha256,omitempty"`
	Headers      bool      `toml:"headers"`
	Rewritten    bool      `toml:"rewritten"`
	GeneratedAt  time.Time `toml:"generated_at"`
	Libraries    []string  `toml:"libraries"`
}

// LibPath returns <output>/lib.
func LibPath(output string) string { return filepath.Join(output, LibDir) }

// WriteManifest writes m to <output>/manifest.toml with Libraries sorted.
func WriteManifest(output string, m Manifest) error {
	m.Libraries = slices.Sorted(slices.Values(m.Libraries))
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(output, ManifestFileName), data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads <output>/manifest.toml.
func ReadManifest(output string) (*Manifest, error) {
	path := filepath.Join(output, ManifestFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &m, nil
}

// WriteVersionFile writes the plain-text summary for m to <output>/VERSION.txt.
func WriteVersionFile(output string, m Manifest) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "libvips version: %s\n", m.Version)
	if m.ReleaseTag != "" {
		fmt.Fprintf(&sb, "Release tag: %s\n", m.ReleaseTag)
	}
	if m.Prefix != "" {
		fmt.Fprintf(&sb, "Homebrew prefix: %s\n", m.Prefix)
	}
	fmt.Fprintf(&sb, "Architecture: %s\n", m.Architecture)
	if m.BuildType != "" {
		fmt.Fprintf(&sb, "Build type: %s\n", m.BuildType)
	}
	if m.SourcePage != "" {
		fmt.Fprintf(&sb, "Source: %s\n", m.SourcePage)
	}
	if m.DownloadURL != "" {
		fmt.Fprintf(&sb, "Download URL: %s\n", m.DownloadURL)
		fmt.Fprintf(&sb, "Filename: %s\n", m.Filename)
		fmt.Fprintf(&sb, "\nDLLs copied: %d\n", len(m.Libraries))
	} else {
		fmt.Fprintf(&sb, "Libraries copied: %d\n", len(m.Libraries))
	}
	sb.WriteString("\nLibraries:\n")
	for _, lib := range slices.Sorted(slices.Values(m.Libraries)) {
		fmt.Fprintf(&sb, "  - %s\n", lib)
	}

	if err := os.WriteFile(filepath.Join(output, VersionFileName), []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write version file: %w", err)
	}
	return nil
}
