// SPDX-License-Identifier: MPL-2.0

package closure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

type (
	// DependencyLister reports the direct link dependencies of a library.
	// Entries are absolute paths, bare filenames, or loader-relative references.
	DependencyLister interface {
		ListDependencies(ctx context.Context, path string) ([]string, error)
	}

	// Options configures a Builder.
	Options struct {
		OutputDir   string
		Classifier  Classifier
		SearchPaths []string
		Lister      DependencyLister
		Logger      *log.Logger
	}

	// Builder walks the dependency graph and materializes the closure.
	Builder struct {
		outputDir   string
		classifier  Classifier
		searchPaths []string
		lister      DependencyLister
		logger      *log.Logger
		set         *OutputSet
		reported    map[string]bool
	}

	// CopyError is returned when a library cannot be written to the output directory.
	CopyError struct {
		Source string
		Dest   string
		Err    error
	}
)

// NewBuilder creates a Builder with a fresh OutputSet.
func NewBuilder(opts Options) *Builder {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Builder{
		outputDir:   opts.OutputDir,
		classifier:  opts.Classifier,
		searchPaths: opts.SearchPaths,
		lister:      opts.Lister,
		logger:      logger,
		set:         newOutputSet(opts.OutputDir),
		reported:    make(map[string]bool),
	}
}

// Set returns the OutputSet populated so far.
func (b *Builder) Set() *OutputSet { return b.set }

// Build copies root and everything it transitively needs into the output
// directory. Only a failed copy is returned as an error; missing or
// unlistable libraries are logged and the walk continues.
func (b *Builder) Build(ctx context.Context, root string) (*OutputSet, error) {
	if err := os.MkdirAll(b.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	if err := b.visit(ctx, root, filepath.Base(root)); err != nil {
		return nil, err
	}
	return b.set, nil
}

// CopySiblings visits every file in libDir matching pattern that is not yet
// copied. It catches version-suffixed variants that listers only report by
// their unversioned symlink name.
func (b *Builder) CopySiblings(ctx context.Context, libDir, pattern string) error {
	matches, err := filepath.Glob(filepath.Join(libDir, pattern))
	if err != nil {
		return fmt.Errorf("glob %s: %w", pattern, err)
	}
	for _, m := range matches {
		if b.set.Status(filepath.Base(m)) == StatusCopied || !isFile(m) {
			continue
		}
		if err := b.visit(ctx, m, filepath.Base(m)); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) visit(ctx context.Context, path, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if b.set.Status(name) == StatusCopied {
		return nil
	}

	if b.classifier.ShouldSkip(path) {
		b.set.record(&LibraryNode{Name: name, Path: path, Resolved: path, Origin: OriginSystem, Status: StatusSkipped})
		b.reportOnce("skip:"+name, func() {
			b.logger.Info("skipping system library", "lib", name, "path", path)
		})
		return nil
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil || !isFile(resolved) {
		b.unresolved(name, path)
		return nil
	}

	origin := OriginControlled
	if b.classifier.IsSystem(path) {
		origin = OriginSystem
	}

	dest := filepath.Join(b.outputDir, name)
	if err := copyFile(resolved, dest); err != nil {
		return &CopyError{Source: resolved, Dest: dest, Err: err}
	}
	b.set.record(&LibraryNode{Name: name, Path: path, Resolved: resolved, Origin: origin, Status: StatusCopied})
	b.logger.Info("copied", "lib", name)

	deps, err := b.lister.ListDependencies(ctx, dest)
	if err != nil {
		b.logger.Warn("failed to list dependencies", "lib", name, "err", err)
		return nil
	}

	for _, dep := range deps {
		if err := b.visitDependency(ctx, dep); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) visitDependency(ctx context.Context, dep string) error {
	if filepath.IsAbs(dep) {
		if b.classifier.IsControlled(dep) || b.classifier.IsSystem(dep) {
			return b.visit(ctx, dep, filepath.Base(dep))
		}
		b.logger.Debug("leaving to dynamic linker", "dep", dep)
		return nil
	}

	name, _ := loaderName(dep)
	if b.set.Status(name) == StatusCopied {
		return nil
	}

	resolved, ok := resolveInDirs(name, b.searchPaths)
	if !ok {
		b.unresolved(name, dep)
		return nil
	}
	if b.classifier.IsControlled(resolved) || b.classifier.IsSystem(resolved) {
		return b.visit(ctx, resolved, name)
	}
	b.logger.Debug("leaving to dynamic linker", "dep", dep, "resolved", resolved)
	return nil
}

func (b *Builder) unresolved(name, ref string) {
	if b.set.Status(name) == StatusCopied {
		return
	}
	b.set.record(&LibraryNode{Name: name, Path: ref, Origin: OriginUnresolved, Status: StatusPending})
	b.reportOnce("missing:"+name, func() {
		b.logger.Warn("library not found", "lib", name, "ref", ref)
	})
}

func (b *Builder) reportOnce(key string, emit func()) {
	if b.reported[key] {
		return
	}
	b.reported[key] = true
	emit()
}

// copyFile writes src over dst. The copy keeps the source permissions plus
// owner write, so later patching tools can modify it.
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
	mode := info.Mode().Perm() | 0o200

	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
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

// Error implements the error interface.
func (e *CopyError) Error() string {
	return fmt.Sprintf("copy %s to %s: %v", e.Source, e.Dest, e.Err)
}

// Unwrap returns the underlying I/O error.
func (e *CopyError) Unwrap() error { return e.Err }
