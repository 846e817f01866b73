// SPDX-License-Identifier: MPL-2.0

package closure

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrRootNotFound is the sentinel error wrapped by RootNotFoundError.
var ErrRootNotFound = errors.New("root library not found")

// RootNotFoundError is returned when no file in Dir matches any root pattern.
type RootNotFoundError struct {
	Dir      string
	Patterns []string
}

// Error implements the error interface.
func (e *RootNotFoundError) Error() string {
	return fmt.Sprintf("no library matching %s in %s", strings.Join(e.Patterns, ", "), e.Dir)
}

// Unwrap returns ErrRootNotFound for errors.Is compatibility.
func (e *RootNotFoundError) Unwrap() error { return ErrRootNotFound }

// FindRoot returns the first file in libDir matching patterns, tried in order.
// Within one pattern the lexically first match wins, so an exact name listed
// before a version-suffixed glob takes precedence.
func FindRoot(libDir string, patterns []string) (string, error) {
	for _, pattern := range patterns {
		if match, ok := firstFile(filepath.Join(libDir, pattern)); ok {
			return match, nil
		}
	}
	return "", &RootNotFoundError{Dir: libDir, Patterns: patterns}
}

// resolveInDirs looks name up in each directory in order: first dir/name,
// then dir/name* for a version-suffixed file.
func resolveInDirs(name string, dirs []string) (string, bool) {
	for _, dir := range dirs {
		candidate := filepath.Join(dir, name)
		if isFile(candidate) {
			return candidate, true
		}
		if match, ok := firstFile(candidate + "*"); ok {
			return match, true
		}
	}
	return "", false
}

// loaderName strips @rpath/, @loader_path/ and @executable_path/ prefixes.
func loaderName(ref string) (string, bool) {
	if !strings.HasPrefix(ref, "@") {
		return ref, false
	}
	return filepath.Base(ref), true
}

func firstFile(pattern string) (string, bool) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", false
	}
	slices.Sort(matches)
	for _, m := range matches {
		if isFile(m) {
			return m, true
		}
	}
	return "", false
}

// isFile follows symlinks and reports whether path is a regular file.
func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
