// SPDX-License-Identifier: MPL-2.0

package closure

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFindRoot(t *testing.T) {
	t.Parallel()

	linuxPatterns := []string{"libvips.so", "libvips.so.*"}

	t.Run("exact name wins", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeLib(t, filepath.Join(dir, "libvips.so"))
		writeLib(t, filepath.Join(dir, "libvips.so.42"))

		got, err := FindRoot(dir, linuxPatterns)
		if err != nil || filepath.Base(got) != "libvips.so" {
			t.Errorf("FindRoot() = %q, %v", got, err)
		}
	})

	t.Run("version-suffixed fallback", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeLib(t, filepath.Join(dir, "libvips.so.42.17.1"))
		writeLib(t, filepath.Join(dir, "libvips.so.42"))

		got, err := FindRoot(dir, linuxPatterns)
		if err != nil || filepath.Base(got) != "libvips.so.42" {
			t.Errorf("FindRoot() = %q, %v", got, err)
		}
	})

	t.Run("macOS dylib naming", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeLib(t, filepath.Join(dir, "libvips.42.dylib"))

		got, err := FindRoot(dir, []string{"libvips.dylib", "libvips.*.dylib"})
		if err != nil || filepath.Base(got) != "libvips.42.dylib" {
			t.Errorf("FindRoot() = %q, %v", got, err)
		}
	})

	t.Run("directories are ignored", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if err := os.Mkdir(filepath.Join(dir, "libvips.so.d"), 0o755); err != nil {
			t.Fatal(err)
		}

		_, err := FindRoot(dir, linuxPatterns)
		if !errors.Is(err, ErrRootNotFound) {
			t.Errorf("FindRoot() error = %v, want ErrRootNotFound", err)
		}
	})
}

func TestResolveInDirs(t *testing.T) {
	t.Parallel()

	first, second := t.TempDir(), t.TempDir()
	writeLib(t, filepath.Join(second, "libffi.so.8"))
	writeLib(t, filepath.Join(first, "libpcre2-8.so.0.11.2"))

	if got, ok := resolveInDirs("libffi.so.8", []string{first, second}); !ok || got != filepath.Join(second, "libffi.so.8") {
		t.Errorf("resolveInDirs(libffi) = %q, %v", got, ok)
	}
	if got, ok := resolveInDirs("libpcre2-8.so.0", []string{first, second}); !ok || filepath.Base(got) != "libpcre2-8.so.0.11.2" {
		t.Errorf("resolveInDirs(libpcre2) = %q, %v", got, ok)
	}
	if _, ok := resolveInDirs("libnope.so", []string{first, second}); ok {
		t.Error("unexpected match")
	}
}

func TestLoaderName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ref    string
		want   string
		loader bool
	}{
		{"@rpath/libglib-2.0.0.dylib", "libglib-2.0.0.dylib", true},
		{"@loader_path/../lib/libffi.8.dylib", "libffi.8.dylib", true},
		{"libz.so.1", "libz.so.1", false},
	}
	for _, tt := range tests {
		got, loader := loaderName(tt.ref)
		if got != tt.want || loader != tt.loader {
			t.Errorf("loaderName(%q) = %q, %v", tt.ref, got, loader)
		}
	}
}
