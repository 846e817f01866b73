// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package binfmt

import (
	"path/filepath"

	"github.com/u-root/u-root/pkg/ldd"
)

// LoaderTrace asks the system dynamic loader, through u-root's ldd, which
// libraries path maps in. The result is transitive. Path itself and symlink
// hops onto it are dropped.
func LoaderTrace(path string) ([]string, error) {
	infos, err := ldd.Ldd([]string{path})
	if err != nil {
		return nil, err
	}

	self, err := filepath.EvalSymlinks(path)
	if err != nil {
		self = path
	}
	seen := make(map[string]bool)
	var deps []string
	for _, fi := range infos {
		name := fi.FullName
		if !filepath.IsAbs(name) || name == path || name == self || seen[name] {
			continue
		}
		seen[name] = true
		deps = append(deps, name)
	}
	return deps, nil
}
