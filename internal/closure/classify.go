// SPDX-License-Identifier: MPL-2.0

package closure

import (
	"path/filepath"
	"strings"
)

// Classifier decides whether a library path belongs to the system or to the
// controlled package-manager prefix.
type Classifier struct {
	// SystemRoots are directory roots owned by the operating system.
	SystemRoots []string
	// AlwaysBundle lists filename substrings copied even from a system root.
	AlwaysBundle []string
	// ControlledPrefix is the package-manager installation prefix.
	ControlledPrefix string
}

// IsSystem reports whether path lies under one of the system roots.
func (c Classifier) IsSystem(path string) bool {
	for _, root := range c.SystemRoots {
		if underRoot(path, root) {
			return true
		}
	}
	return false
}

// IsControlled reports whether path lies under the controlled prefix.
func (c Classifier) IsControlled(path string) bool {
	return c.ControlledPrefix != "" && underRoot(path, c.ControlledPrefix)
}

// AlwaysBundled reports whether name matches the always-bundle list.
func (c Classifier) AlwaysBundled(name string) bool {
	for _, sub := range c.AlwaysBundle {
		if sub != "" && strings.Contains(name, sub) {
			return true
		}
	}
	return false
}

// ShouldSkip reports whether path is a system library that must not be copied.
func (c Classifier) ShouldSkip(path string) bool {
	return c.IsSystem(path) && !c.AlwaysBundled(filepath.Base(path))
}

// underRoot matches on path boundaries so "/lib" does not claim "/lib64".
func underRoot(path, root string) bool {
	root = filepath.Clean(root)
	path = filepath.Clean(path)
	if path == root {
		return true
	}
	if root == string(filepath.Separator) {
		return filepath.IsAbs(path)
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
