// SPDX-License-Identifier: MPL-2.0

package rewrite

import (
	"context"
	"os"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/vipsbundle/vipsbundle/internal/binfmt"
	"github.com/vipsbundle/vipsbundle/internal/toolexec"
)

type (
	// Report summarizes one rewrite pass.
	Report struct {
		Rewritten []string
		Failed    []string
		// MissingTool names the required tool that was not installed, if any.
		MissingTool string
	}

	// Rewriter runs a format's rewrite over a bundle directory.
	Rewriter struct {
		format binfmt.Format
		exec   toolexec.Executor
		logger *log.Logger
	}
)

// New creates a Rewriter for format.
func New(format binfmt.Format, exec toolexec.Executor, logger *log.Logger) *Rewriter {
	return &Rewriter{format: format, exec: exec, logger: logger}
}

// Skipped reports whether the pass did not run because a tool was missing.
func (r Report) Skipped() bool { return r.MissingTool != "" }

// Rewrite patches every regular file in outputDir matching the format's
// binary pattern. It never fails: a missing tool skips the pass with a
// warning, and a failure on one binary is logged before moving on.
func (r *Rewriter) Rewrite(ctx context.Context, outputDir string) Report {
	var report Report

	for _, tool := range r.format.RequiredTools() {
		if _, err := r.exec.LookPath(tool.Name); err != nil {
			r.logger.Warn(tool.Name+" not found, skipping path rewrite", "hint", tool.Hint)
			report.MissingTool = tool.Name
			return report
		}
	}

	for _, path := range binaries(outputDir, r.format.LibraryPatterns("").Binaries) {
		if ctx.Err() != nil {
			r.logger.Warn("path rewrite interrupted", "err", ctx.Err())
			break
		}
		name := filepath.Base(path)
		if err := r.format.Rewrite(ctx, path, outputDir); err != nil {
			r.logger.Warn("failed to rewrite", "lib", name, "err", err)
			report.Failed = append(report.Failed, name)
			continue
		}
		r.logger.Debug("rewrote", "lib", name)
		report.Rewritten = append(report.Rewritten, name)
	}

	r.logger.Info("path rewrite complete", "rewritten", len(report.Rewritten), "failed", len(report.Failed))
	return report
}

// binaries returns the sorted regular files in dir matching pattern.
func binaries(dir, pattern string) []string {
	matches, _ := filepath.Glob(filepath.Join(dir, pattern))
	slices.Sort(matches)
	out := matches[:0]
	for _, m := range matches {
		if info, err := os.Lstat(m); err == nil && info.Mode().IsRegular() {
			out = append(out, m)
		}
	}
	return out
}
