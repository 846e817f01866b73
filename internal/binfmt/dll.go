// SPDX-License-Identifier: MPL-2.0

package binfmt

import "context"

// DLL handles Windows PE libraries. The loader searches the directory of the
// loading module first, so co-located DLLs need no listing or patching.
type DLL struct{}

// Name implements Format.
func (DLL) Name() string { return "dll" }

// LibraryPatterns implements Format.
func (DLL) LibraryPatterns(lib string) Patterns {
	return Patterns{
		Root:     []string{lib + "-*.dll", lib + "*.dll"},
		Siblings: lib + "*.dll",
		Binaries: "*.dll",
	}
}

// RequiredTools implements Format.
func (DLL) RequiredTools() []Tool { return nil }

// ListDependencies implements Format.
func (DLL) ListDependencies(context.Context, string) ([]string, error) { return nil, nil }

// Rewrite implements Format.
func (DLL) Rewrite(context.Context, string, string) error { return nil }

// BundleRelative implements Format.
func (DLL) BundleRelative(string, string) bool { return true }
