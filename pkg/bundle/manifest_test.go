// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/vipsbundle/vipsbundle/internal/testutil"
)

func TestWriteVersionFile_Homebrew(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	m := Manifest{
		Platform:     "linux",
		Version:      "8.15.5_1",
		Architecture: "x86_64",
		Prefix:       "/home/linuxbrew/.linuxbrew",
		Libraries:    []string{"libvips.so.42", "libglib-2.0.so.0"},
	}
	if err := WriteVersionFile(out, m); err != nil {
		t.Fatalf("WriteVersionFile() error = %v", err)
	}

	want := `libvips version: 8.15.5_1
Homebrew prefix: /home/linuxbrew/.linuxbrew
Architecture: x86_64
Libraries copied: 2

Libraries:
  - libglib-2.0.so.0
  - libvips.so.42
`
	if got := testutil.MustReadFile(t, filepath.Join(out, VersionFileName)); got != want {
		t.Errorf("VERSION.txt =\n%s\nwant\n%s", got, want)
	}
}

func TestWriteVersionFile_Release(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	m := Manifest{
		Platform:     "windows",
		Version:      "8.16.1",
		ReleaseTag:   "v8.16.1",
		Architecture: "x64",
		BuildType:    "web",
		SourcePage:   "https://github.com/libvips/build-win64-mxe/releases",
		DownloadURL:  "https://github.com/libvips/build-win64-mxe/releases/download/v8.16.1/vips-dev-w64-web-8.16.1-static.zip",
		Filename:     "vips-dev-w64-web-8.16.1-static.zip",
		Libraries:    []string{"libvips-42.dll"},
	}
	if err := WriteVersionFile(out, m); err != nil {
		t.Fatalf("WriteVersionFile() error = %v", err)
	}

	want := `libvips version: 8.16.1
Release tag: v8.16.1
Architecture: x64
Build type: web
Source: https://github.com/libvips/build-win64-mxe/releases
Download URL: https://github.com/libvips/build-win64-mxe/releases/download/v8.16.1/vips-dev-w64-web-8.16.1-static.zip
Filename: vips-dev-w64-web-8.16.1-static.zip

DLLs copied: 1

Libraries:
  - libvips-42.dll
`
	if got := testutil.MustReadFile(t, filepath.Join(out, VersionFileName)); got != want {
		t.Errorf("VERSION.txt =\n%s\nwant\n%s", got, want)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	in := Manifest{
		Platform:     "macos",
		Version:      "8.16.0",
		Architecture: "arm64",
		Prefix:       "/opt/homebrew",
		Headers:      true,
		Rewritten:    true,
		GeneratedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Libraries:    []string{"libvips.42.dylib", "libglib-2.0.0.dylib"},
	}
	if err := WriteManifest(out, in); err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}

	got, err := ReadManifest(out)
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}
	if got.Platform != in.Platform || got.Prefix != in.Prefix || !got.Headers || !got.Rewritten {
		t.Errorf("ReadManifest() = %+v", got)
	}
	if !got.GeneratedAt.Equal(in.GeneratedAt) {
		t.Errorf("GeneratedAt = %v, want %v", got.GeneratedAt, in.GeneratedAt)
	}
	if !slices.Equal(got.Libraries, []string{"libglib-2.0.0.dylib", "libvips.42.dylib"}) {
		t.Errorf("Libraries = %v, want sorted", got.Libraries)
	}
}

func TestReadManifest_Missing(t *testing.T) {
	t.Parallel()

	if _, err := ReadManifest(t.TempDir()); err == nil {
		t.Error("expected error for missing manifest")
	}
}
