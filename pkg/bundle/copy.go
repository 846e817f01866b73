// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
)

// FileEntry is one file in a finished bundle.
type FileEntry struct {
	// Rel is the slash-separated path relative to the bundle root.
	Rel  string
	Size int64
}

// CopyHeaders merges <prefix>/include into <output>/include and returns the
// number of .h files now present there. A missing include directory is a
// warning, not an error.
func CopyHeaders(prefix, output string, logger *log.Logger) (int, error) {
	src := filepath.Join(prefix, IncludeDir)
	if !isDir(src) {
		logger.Warn("include directory not found", "dir", src)
		return 0, nil
	}

	logger.Info("copying headers", "from", src)
	dst := filepath.Join(output, IncludeDir)
	if err := copyTree(src, dst); err != nil {
		return 0, fmt.Errorf("copy headers from %s: %w", src, err)
	}

	count := 0
	_ = filepath.WalkDir(dst, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() && strings.HasSuffix(path, ".h") {
			count++
		}
		return nil
	})
	logger.Info("copied header files", "count", count)
	return count, nil
}

// CopyPkgConfig copies <prefix>/lib/pkgconfig/*.pc into the bundle.
func CopyPkgConfig(prefix, output string, logger *log.Logger) ([]string, error) {
	src := filepath.Join(prefix, LibDir, PkgConfigDir)
	if !isDir(src) {
		logger.Debug("no pkg-config directory found", "dir", src)
		return nil, nil
	}
	logger.Info("copying pkg-config files", "from", src)
	return copyGlob(src, "*.pc", filepath.Join(output, LibDir, PkgConfigDir), logger)
}

// CopyDLLs copies <source>/bin/*.dll into <output>/lib.
func CopyDLLs(source, output string, logger *log.Logger) ([]string, error) {
	src := filepath.Join(source, "bin")
	if !isDir(src) {
		logger.Warn("bin directory not found", "dir", src)
		return nil, nil
	}
	logger.Info("copying DLL files", "from", src)
	return copyGlob(src, "*.dll", LibPath(output), logger)
}

// ListFiles returns every regular file under output, sorted by path.
func ListFiles(output string) ([]FileEntry, error) {
	var entries []FileEntry
	err := filepath.WalkDir(output, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(output, path)
		if err != nil {
			return err
		}
		entries = append(entries, FileEntry{Rel: filepath.ToSlash(rel), Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", output, err)
	}
	slices.SortFunc(entries, func(a, b FileEntry) int { return strings.Compare(a.Rel, b.Rel) })
	return entries, nil
}

func copyGlob(srcDir, pattern, dstDir string, logger *log.Logger) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(srcDir, pattern))
	if err != nil {
		return nil, err
	}
	slices.Sort(matches)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return nil, err
	}

	var copied []string
	for _, m := range matches {
		name := filepath.Base(m)
		if err := copyFile(m, filepath.Join(dstDir, name)); err != nil {
			return copied, fmt.Errorf("copy %s: %w", name, err)
		}
		logger.Info("copied", "file", name)
		copied = append(copied, name)
	}
	return copied, nil
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if d.Type()&fs.ModeSymlink != 0 && isDir(path) {
			return nil
		}
		return copyFile(path, target)
	})
}

// copyFile copies src (following symlinks) to dst, keeping mode and mtime.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm()|0o200)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
