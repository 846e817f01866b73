// SPDX-License-Identifier: MPL-2.0

package binfmt

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vipsbundle/vipsbundle/internal/toolexec"
	"github.com/vipsbundle/vipsbundle/pkg/platform"
)

// DefaultInstallNameToken is the Mach-O load-path token used for bundled references.
const DefaultInstallNameToken = "@rpath"

type (
	// Format is the per-platform binary format capability.
	Format interface {
		// Name identifies the format in logs.
		Name() string
		// LibraryPatterns returns the globs used to locate library lib.
		LibraryPatterns(lib string) Patterns
		// RequiredTools lists the tools Rewrite needs.
		RequiredTools() []Tool
		// ListDependencies reports the direct link dependencies of path.
		ListDependencies(ctx context.Context, path string) ([]string, error)
		// Rewrite makes path resolve bundled dependencies relative to its own directory.
		Rewrite(ctx context.Context, path, outputDir string) error
		// BundleRelative reports whether a dependency reference resolves inside outputDir.
		BundleRelative(ref, outputDir string) bool
	}

	// Patterns are the file globs a format uses, relative to a lib directory.
	Patterns struct {
		// Root globs find the primary library, tried in order.
		Root []string
		// Siblings matches version-suffixed variants of the root base name.
		Siblings string
		// Binaries matches every file the rewriter patches.
		Binaries string
	}

	// Tool is an external program with an installation hint.
	Tool struct {
		Name string
		Hint string
	}

	// Tracer returns the resolved paths of the libraries the dynamic loader
	// maps for path, transitively.
	Tracer func(path string) ([]string, error)

	// Options tunes the variant ForTarget returns.
	Options struct {
		MachO MachOOptions
		// Trace replaces LoaderTrace for ELF listing.
		Trace Tracer
	}

	// MachOOptions tunes the Mach-O variant.
	MachOOptions struct {
		// InstallNameToken prefixes rewritten references, e.g. "@rpath" or "@loader_path".
		InstallNameToken string
		// Codesign re-signs each patched binary ad hoc.
		Codesign bool
	}
)

// ForTarget selects the format for target.
func ForTarget(target platform.Target, exec toolexec.Executor, logger *log.Logger, opts Options) (Format, error) {
	switch target {
	case platform.TargetLinux:
		return NewELF(exec, logger, opts.Trace), nil
	case platform.TargetMacOS:
		return NewMachO(exec, logger, opts.MachO), nil
	case platform.TargetWindows:
		return DLL{}, nil
	default:
		return nil, fmt.Errorf("binary format: %w", &platform.InvalidTargetError{Value: target})
	}
}
