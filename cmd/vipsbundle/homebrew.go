// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vipsbundle/vipsbundle/internal/binfmt"
	"github.com/vipsbundle/vipsbundle/internal/brew"
	"github.com/vipsbundle/vipsbundle/internal/closure"
	"github.com/vipsbundle/vipsbundle/internal/issue"
	"github.com/vipsbundle/vipsbundle/internal/rewrite"
	"github.com/vipsbundle/vipsbundle/internal/toolexec"
	"github.com/vipsbundle/vipsbundle/pkg/bundle"
	"github.com/vipsbundle/vipsbundle/pkg/platform"
)

// rootLibrary is the base name of the closure root.
const rootLibrary = "libvips"

// brewParams are the inputs of a Homebrew-sourced bundle (linux or macos).
type brewParams struct {
	target         platform.Target
	output         string
	includeHeaders bool
	fixPaths       bool
}

// brewResult is what a Homebrew run produced.
type brewResult struct {
	manifest bundle.Manifest
	set      *closure.OutputSet
	report   rewrite.Report
}

// classifierFor returns the configured classifier for target rooted at the
// Homebrew prefix.
func (s *session) classifierFor(target platform.Target, prefix string) closure.Classifier {
	c := closure.Classifier{ControlledPrefix: prefix}
	switch target {
	case platform.TargetMacOS:
		c.SystemRoots = s.cfg.MacOS.SystemRoots
		c.AlwaysBundle = s.cfg.MacOS.AlwaysBundle
	default:
		c.SystemRoots = s.cfg.Linux.SystemRoots
		c.AlwaysBundle = s.cfg.Linux.AlwaysBundle
	}
	return c
}

func (s *session) formatFor(target platform.Target) (binfmt.Format, error) {
	return binfmt.ForTarget(target, s.exec, s.logger, binfmt.Options{
		MachO: binfmt.MachOOptions{
			InstallNameToken: s.cfg.MacOS.InstallNameToken,
			Codesign:         s.cfg.MacOS.Codesign,
		},
		Trace: s.app.Trace,
	})
}

// runBrew builds a bundle from a Homebrew installation:
//  1. Resolve the Homebrew prefix, the package prefix and its version.
//  2. Locate the root library and copy its dependency closure into <output>/lib.
//  3. Copy version-suffixed siblings of the root.
//  4. Rewrite search paths when requested.
//  5. Copy headers and pkg-config files, then write VERSION.txt and manifest.toml.
func (s *session) runBrew(ctx context.Context, p brewParams) (*brewResult, error) {
	logger := s.logger
	out := s.app.stdout
	pkg := s.cfg.Homebrew.Package

	printBanner(out, fmt.Sprintf("libvips %s Library Copier (Homebrew)", platformTitle(p.target)))

	bc := brew.NewClient(s.exec, s.cfg.Homebrew.Binary, logger)
	prefix, err := bc.Prefix(ctx)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("query homebrew prefix").
			WithResource(s.cfg.Homebrew.Binary).
			WithSuggestion("Check that brew is installed and on your PATH").
			WithIssue(issue.HomebrewNotFoundId).
			Wrap(err).
			BuildError()
	}
	logger.Info("homebrew prefix", "path", prefix)

	pkgPrefix, err := bc.PackagePrefix(ctx, pkg)
	if err != nil {
		return nil, packagePrefixError(pkg, err)
	}
	version := bc.PackageVersion(ctx, pkg)
	arch := platform.HostArch()
	logger.Info("libvips prefix", "path", pkgPrefix)
	logger.Info("libvips version", "version", version)
	logger.Info("architecture", "arch", arch)

	libOut := bundle.LibPath(p.output)
	if err := os.MkdirAll(libOut, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	logger.Info("output directory", "path", libOut)

	format, err := s.formatFor(p.target)
	if err != nil {
		return nil, err
	}
	patterns := format.LibraryPatterns(rootLibrary)
	pkgLib := filepath.Join(pkgPrefix, bundle.LibDir)

	root, err := closure.FindRoot(pkgLib, patterns.Root)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("locate root library").
			WithResource(pkgLib).
			WithSuggestion("Run 'brew install " + pkg + "'").
			WithIssue(issue.RootLibraryNotFoundId).
			Wrap(err).
			BuildError()
	}
	logger.Info("main library", "path", root)

	builder := closure.NewBuilder(closure.Options{
		OutputDir:   libOut,
		Classifier:  s.classifierFor(p.target, prefix),
		SearchPaths: []string{pkgLib, filepath.Join(prefix, bundle.LibDir)},
		Lister:      format,
		Logger:      logger,
	})

	logger.Info("copying shared libraries", "format", format.Name())
	set, err := builder.Build(ctx, root)
	if err != nil {
		return nil, err
	}
	if err := builder.CopySiblings(ctx, pkgLib, patterns.Siblings); err != nil {
		return nil, err
	}
	copied := set.Copied()
	logger.Info("total libraries copied", "count", len(copied))
	if unresolved := set.Unresolved(); len(unresolved) > 0 {
		logger.Warn("bundle is missing libraries", "count", len(unresolved), "libs", unresolved)
	}

	var report rewrite.Report
	if p.fixPaths {
		report = rewrite.New(format, s.exec, logger).Rewrite(ctx, libOut)
		if report.Skipped() {
			if page := issue.Get(issue.PatchToolMissingId); page != nil && s.verbose {
				if rendered, err := page.Render("auto"); err == nil {
					fmt.Fprint(s.app.stderr, rendered)
				}
			}
		}
	}

	if p.includeHeaders {
		if _, err := bundle.CopyHeaders(pkgPrefix, p.output, logger); err != nil {
			return nil, issue.WrapWithContext(err, "copy headers", pkgPrefix)
		}
		for _, extra := range s.cfg.Homebrew.HeaderPackages {
			extraPrefix, err := bc.PackagePrefix(ctx, extra)
			if err != nil {
				logger.Warn("could not find headers", "package", extra, "err", err)
				continue
			}
			if _, err := bundle.CopyHeaders(extraPrefix, p.output, logger); err != nil {
				return nil, issue.WrapWithContext(err, "copy headers", extraPrefix)
			}
		}
	}

	if _, err := bundle.CopyPkgConfig(pkgPrefix, p.output, logger); err != nil {
		return nil, issue.WrapWithContext(err, "copy pkg-config files", pkgPrefix)
	}

	manifest := bundle.Manifest{
		Platform:     p.target.String(),
		Version:      version,
		Architecture: arch,
		Prefix:       prefix,
		Headers:      p.includeHeaders,
		Rewritten:    p.fixPaths && !report.Skipped(),
		GeneratedAt:  s.app.Now().UTC(),
		Libraries:    copied,
	}
	if err := s.writeMetadata(p.output, manifest); err != nil {
		return nil, err
	}

	printSummary(out, []summaryRow{
		{"libvips version", version},
		{"Architecture", arch},
		{"Libraries copied", strconv.Itoa(len(copied))},
		{"Output directory", p.output},
	})
	if err := s.printListing(p.output); err != nil {
		return nil, err
	}
	return &brewResult{manifest: manifest, set: set, report: report}, nil
}

// writeMetadata writes VERSION.txt and manifest.toml.
func (s *session) writeMetadata(output string, m bundle.Manifest) error {
	if err := bundle.WriteVersionFile(output, m); err != nil {
		return err
	}
	if err := bundle.WriteManifest(output, m); err != nil {
		return err
	}
	s.logger.Debug("wrote bundle metadata", "version_file", bundle.VersionFileName, "manifest", bundle.ManifestFileName)
	return nil
}

func (s *session) printListing(output string) error {
	files, err := bundle.ListFiles(output)
	if err != nil {
		return err
	}
	printFileListing(s.app.stdout, files)
	return nil
}

func packagePrefixError(pkg string, err error) error {
	ctx := issue.NewErrorContext().
		WithOperation("query package prefix").
		WithResource(pkg).
		WithIssue(issue.HomebrewNotFoundId).
		Wrap(err)
	if errors.Is(err, toolexec.ErrToolNotFound) {
		ctx = ctx.WithSuggestion("Check that brew is installed and on your PATH")
	} else {
		ctx = ctx.WithSuggestion("Install the package with 'brew install " + pkg + "'")
	}
	return ctx.BuildError()
}

func platformTitle(t platform.Target) string {
	switch t {
	case platform.TargetMacOS:
		return "macOS"
	case platform.TargetWindows:
		return "Windows"
	default:
		return "Linux"
	}
}
