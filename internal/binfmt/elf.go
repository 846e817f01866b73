// SPDX-License-Identifier: MPL-2.0

package binfmt

import (
	"bufio"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vipsbundle/vipsbundle/internal/toolexec"
)

// ELF handles Linux shared objects. Dependencies come from a loader trace,
// with readelf NEEDED entries as a fallback; rewriting sets RUNPATH to $ORIGIN.
type ELF struct {
	exec   toolexec.Executor
	logger *log.Logger
	trace  Tracer
}

// NewELF creates the Linux format. A nil trace uses LoaderTrace.
func NewELF(exec toolexec.Executor, logger *log.Logger, trace Tracer) *ELF {
	if trace == nil {
		trace = LoaderTrace
	}
	return &ELF{exec: exec, logger: logger, trace: trace}
}

// Name implements Format.
func (*ELF) Name() string { return "elf" }

// LibraryPatterns implements Format.
func (*ELF) LibraryPatterns(lib string) Patterns {
	return Patterns{
		Root:     []string{lib + ".so", lib + ".so.*"},
		Siblings: lib + "*.so*",
		Binaries: "*.so*",
	}
}

// RequiredTools implements Format.
func (*ELF) RequiredTools() []Tool {
	return []Tool{{Name: "patchelf", Hint: "Install patchelf with: sudo apt-get install patchelf"}}
}

// ListDependencies implements Format.
func (e *ELF) ListDependencies(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	deps, err := e.trace(path)
	if err == nil {
		return deps, nil
	}
	e.logger.Debug("loader trace failed, falling back to readelf", "lib", filepath.Base(path), "err", err)

	res, rerr := e.exec.Run(ctx, "readelf", "-d", path)
	if rerr != nil {
		return nil, fmt.Errorf("list dependencies of %s: %w", path, rerr)
	}
	return parseReadelfNeeded(res.Stdout), nil
}

// Rewrite implements Format.
func (e *ELF) Rewrite(ctx context.Context, path, _ string) error {
	if _, err := e.exec.Run(ctx, "patchelf", "--set-rpath", "$ORIGIN", path); err != nil {
		return fmt.Errorf("set rpath: %w", err)
	}
	return nil
}

// BundleRelative implements Format. With RUNPATH set to $ORIGIN, the loader
// resolves bundled siblings to paths inside outputDir.
func (*ELF) BundleRelative(ref, outputDir string) bool {
	if !filepath.IsAbs(ref) {
		return false
	}
	return filepath.Dir(filepath.Clean(ref)) == filepath.Clean(outputDir)
}

// parseReadelfNeeded extracts names from "(NEEDED) Shared library: [libz.so.1]" lines.
func parseReadelfNeeded(out string) []string {
	var deps []string
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(line, "(NEEDED)") {
			continue
		}
		_, rest, ok := strings.Cut(line, "[")
		if !ok {
			continue
		}
		if name, _, ok := strings.Cut(rest, "]"); ok && name != "" {
			deps = append(deps, name)
		}
	}
	return deps
}
