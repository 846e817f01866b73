// SPDX-License-Identifier: MPL-2.0

package verify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/vipsbundle/vipsbundle/internal/binfmt"
)

// Finding is a reference to a bundled library that escapes the bundle.
type Finding struct {
	// Library is the bundled binary holding the reference.
	Library string
	// Reference is the dependency as recorded in Library.
	Reference string
}

// String renders the finding for logs.
func (f Finding) String() string {
	return fmt.Sprintf("%s -> %s", f.Library, f.Reference)
}

// Check lists the dependencies of every binary in outputDir. A reference
// whose base name is itself a bundled file must be bundle-relative for the
// format; anything else is returned as a Finding. Listing failures abort.
func Check(ctx context.Context, format binfmt.Format, outputDir string) ([]Finding, error) {
	matches, err := filepath.Glob(filepath.Join(outputDir, format.LibraryPatterns("").Binaries))
	if err != nil {
		return nil, fmt.Errorf("glob bundle: %w", err)
	}
	slices.Sort(matches)

	bundled := make(map[string]bool, len(matches))
	for _, m := range matches {
		bundled[filepath.Base(m)] = true
	}

	var findings []Finding
	for _, path := range matches {
		if info, err := os.Lstat(path); err != nil || !info.Mode().IsRegular() {
			continue
		}
		name := filepath.Base(path)
		refs, err := format.ListDependencies(ctx, path)
		if err != nil {
			return findings, fmt.Errorf("inspect %s: %w", name, err)
		}
		for _, ref := range refs {
			base := filepath.Base(ref)
			if base == name || !bundled[base] || format.BundleRelative(ref, outputDir) {
				continue
			}
			findings = append(findings, Finding{Library: name, Reference: ref})
		}
	}
	return findings, nil
}
