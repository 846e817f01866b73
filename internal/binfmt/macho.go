// SPDX-License-Identifier: MPL-2.0

package binfmt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vipsbundle/vipsbundle/internal/toolexec"
)

// MachO handles macOS dylibs. Dependencies come from otool -L; rewriting
// sets the install name and redirects bundled references with install_name_tool.
type MachO struct {
	exec     toolexec.Executor
	logger   *log.Logger
	token    string
	codesign bool
}

// NewMachO creates the macOS format.
func NewMachO(exec toolexec.Executor, logger *log.Logger, opts MachOOptions) *MachO {
	token := strings.TrimSuffix(opts.InstallNameToken, "/")
	if token == "" {
		token = DefaultInstallNameToken
	}
	return &MachO{exec: exec, logger: logger, token: token, codesign: opts.Codesign}
}

// Name implements Format.
func (*MachO) Name() string { return "macho" }

// LibraryPatterns implements Format.
func (*MachO) LibraryPatterns(lib string) Patterns {
	return Patterns{
		Root:     []string{lib + ".dylib", lib + ".*.dylib"},
		Siblings: lib + "*.dylib",
		Binaries: "*.dylib",
	}
}

// RequiredTools implements Format.
func (m *MachO) RequiredTools() []Tool {
	tools := []Tool{{Name: "install_name_tool", Hint: "Install the Xcode command line tools with: xcode-select --install"}}
	if m.codesign {
		tools = append(tools, Tool{Name: "codesign", Hint: "Install the Xcode command line tools with: xcode-select --install"})
	}
	return tools
}

// ListDependencies implements Format.
func (m *MachO) ListDependencies(ctx context.Context, path string) ([]string, error) {
	res, err := m.exec.Run(ctx, "otool", "-L", path)
	if err != nil {
		return nil, fmt.Errorf("list dependencies of %s: %w", path, err)
	}
	return parseOtool(res.Stdout), nil
}

// Rewrite implements Format. The install name becomes <token>/<name>; every
// reference whose base name is present in outputDir is redirected to
// <token>/<base>. Other references are system libraries and stay untouched.
func (m *MachO) Rewrite(ctx context.Context, path, outputDir string) error {
	name := filepath.Base(path)
	if _, err := m.exec.Run(ctx, "install_name_tool", "-id", m.token+"/"+name, path); err != nil {
		return fmt.Errorf("set install name: %w", err)
	}

	deps, err := m.ListDependencies(ctx, path)
	if err != nil {
		return err
	}

	var errs []error
	for _, dep := range deps {
		base := filepath.Base(dep)
		if base == name || m.BundleRelative(dep, outputDir) {
			continue
		}
		if _, err := os.Stat(filepath.Join(outputDir, base)); err != nil {
			continue
		}
		if _, err := m.exec.Run(ctx, "install_name_tool", "-change", dep, m.token+"/"+base, path); err != nil {
			errs = append(errs, fmt.Errorf("change %s: %w", base, err))
		}
	}

	if m.codesign {
		if _, err := m.exec.Run(ctx, "codesign", "--force", "--sign", "-", path); err != nil {
			m.logger.Warn("ad-hoc signing failed", "lib", name, "err", err)
		}
	}
	return errors.Join(errs...)
}

// BundleRelative implements Format.
func (m *MachO) BundleRelative(ref, _ string) bool {
	return strings.HasPrefix(ref, m.token+"/")
}

// parseOtool extracts references from otool -L output. The first line names
// the inspected file; each following line is "<path> (compatibility ...)".
func parseOtool(out string) []string {
	var deps []string
	sc := bufio.NewScanner(strings.NewReader(out))
	first := true
	for sc.Scan() {
		if first {
			first = false
			continue
		}
		line := strings.TrimSpace(sc.Text())
		ref, _, _ := strings.Cut(line, " (")
		if ref = strings.TrimSpace(ref); ref != "" {
			deps = append(deps, ref)
		}
	}
	return deps
}
