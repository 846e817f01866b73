// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/vipsbundle/vipsbundle/pkg/platform"

	"github.com/charmbracelet/log"
)

// ErrUnsafePath is returned for entries that would be written outside the
// target directory or that Windows cannot create.
var ErrUnsafePath = errors.New("archive entry escapes target directory")

// ExtractZip unpacks zipPath into dir and returns the first top-level
// directory it created, or dir itself when the archive has none.
func ExtractZip(zipPath, dir string, logger *log.Logger) (string, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", zipPath, err)
	}
	defer zr.Close()

	logger.Info("extracting", "archive", filepath.Base(zipPath), "entries", len(zr.File))

	root, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	var topDirs []string
	for _, f := range zr.File {
		target, err := safeJoin(root, f.Name)
		if err != nil {
			return "", err
		}

		if top, _, _ := strings.Cut(filepath.ToSlash(filepath.Clean(f.Name)), "/"); top != "" &&
			(f.FileInfo().IsDir() || strings.Contains(filepath.ToSlash(f.Name), "/")) && !slices.Contains(topDirs, top) {
			topDirs = append(topDirs, top)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return "", err
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return "", fmt.Errorf("extract %s: %w", f.Name, err)
		}
	}

	slices.Sort(topDirs)
	if len(topDirs) == 0 {
		return root, nil
	}
	extracted := filepath.Join(root, topDirs[0])
	logger.Info("extracted", "dir", extracted)
	return extracted, nil
}

func safeJoin(root, name string) (string, error) {
	target := filepath.Join(root, name)
	if target != root && !strings.HasPrefix(target, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	if platform.IsWindowsReservedName(name) {
		return "", fmt.Errorf("%w: reserved name %s", ErrUnsafePath, name)
	}
	return target, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode|0o200)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
