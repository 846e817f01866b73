// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vipsbundle/vipsbundle/internal/archive"
	"github.com/vipsbundle/vipsbundle/internal/issue"
	"github.com/vipsbundle/vipsbundle/internal/release"
	"github.com/vipsbundle/vipsbundle/pkg/bundle"
	"github.com/vipsbundle/vipsbundle/pkg/platform"

	"github.com/spf13/cobra"
)

// windowsParams are the inputs of a release-sourced Windows bundle.
type windowsParams struct {
	output         string
	arch           string
	buildType      string
	version        string
	includeHeaders bool
}

// newWindowsCommand creates `vipsbundle windows`.
func newWindowsCommand(app *App, flags *rootFlags) *cobra.Command {
	var p windowsParams

	cmd := &cobra.Command{
		Use:   "windows",
		Short: "Download prebuilt libvips DLLs for Windows",
		Long: `Download prebuilt libvips DLLs for Windows.

The zip for the requested architecture and build type is fetched from the
libvips/build-win64-mxe GitHub releases, and its bin/*.dll files are copied into
<output>/lib. DLLs find their siblings in the loading directory, so no path
rewriting is needed. Set GITHUB_TOKEN to raise the API rate limit.`,
		Example: `  vipsbundle windows -o dist/windows
  vipsbundle windows -o dist/windows -a arm64 -b all
  vipsbundle windows -o dist/windows -V 8.16.1 --include-headers`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceErrors = true

			s, err := app.newSession(cmd.Context(), flags)
			if err != nil {
				return reportSetupError(app.stderr, err, flags.verbose, issue.ConfigLoadFailedId)
			}
			if _, err := s.runWindows(cmd.Context(), p); err != nil {
				return reportSetupError(app.stderr, err, flags.verbose, 0)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&p.output, "output", "o", "", "output directory for the bundle")
	cmd.Flags().StringVarP(&p.arch, "arch", "a", string(release.ArchX64), "target architecture (x64, arm64)")
	cmd.Flags().StringVarP(&p.buildType, "build-type", "b", string(release.BuildWeb), "build type: web (common formats) or all (all formats)")
	cmd.Flags().StringVarP(&p.version, "version", "V", release.LatestVersion, "libvips version to download")
	cmd.Flags().BoolVar(&p.includeHeaders, "include-headers", false, "also copy header files")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// releaseClient builds the GitHub client from configuration.
func (s *session) releaseClient() *release.Client {
	w := s.cfg.Windows
	opts := []release.ClientOption{
		release.WithHTTPClient(s.app.HTTPClient),
		release.WithBaseURL(w.APIBaseURL),
		release.WithRepo(w.Owner, w.Repo),
		release.WithUserAgent(w.UserAgent + "/" + Version),
	}
	if w.Token != "" {
		opts = append(opts, release.WithToken(w.Token))
	}
	return release.NewClient(opts...)
}

// runWindows builds a bundle from a GitHub release:
//  1. Validate the architecture and build type.
//  2. Resolve the release for the requested version and pick the matching zip.
//  3. Download and extract it into a temporary directory.
//  4. Copy DLLs, headers and pkg-config files, then write VERSION.txt and manifest.toml.
func (s *session) runWindows(ctx context.Context, p windowsParams) (*bundle.Manifest, error) {
	logger := s.logger
	out := s.app.stdout

	arch, err := release.ParseArch(p.arch)
	if err != nil {
		return nil, invalidFlagError("arch", err, "Use -a x64 or -a arm64")
	}
	buildType, err := release.ParseBuildType(p.buildType)
	if err != nil {
		return nil, invalidFlagError("build-type", err, "Use -b web or -b all")
	}

	printBanner(out, "libvips Windows Binary Downloader")
	logger.Info("target architecture", "arch", arch)
	logger.Info("build type", "type", buildType)
	logger.Info("target version", "version", p.version)
	logger.Info("output directory", "path", p.output)

	client := s.releaseClient()

	apiCtx, cancel := context.WithTimeout(ctx, s.cfg.Windows.APITimeout)
	rel, err := client.ForVersion(apiCtx, p.version)
	cancel()
	if err != nil {
		return nil, releaseError("fetch release metadata", client.PageURL(), err)
	}
	logger.Info("release", "tag", rel.TagName)

	asset, err := release.FindAsset(rel, arch, buildType)
	if err != nil {
		var noMatch *release.NoMatchingAssetError
		if errors.As(err, &noMatch) {
			logger.Error("could not find a download", "arch", arch, "build_type", buildType)
			logger.Error("Available assets:")
			for _, name := range noMatch.Available {
				logger.Error("  - " + name)
			}
		}
		return nil, issue.NewErrorContext().
			WithOperation("select release asset").
			WithResource(rel.TagName).
			WithIssue(issue.NoMatchingAssetId).
			Wrap(err).
			BuildError()
	}

	version := release.VersionFromFilename(asset.Name)
	logger.Info("download URL", "url", asset.BrowserDownloadURL)
	logger.Info("filename", "name", asset.Name)
	logger.Info("version", "version", version)

	if err := os.MkdirAll(p.output, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.MkdirTemp("", "vipsbundle-*")
	if err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	logger.Info("downloading pre-built binaries")
	dlCtx, dlCancel := context.WithTimeout(ctx, s.cfg.Windows.DownloadTimeout)
	dl, err := client.Download(dlCtx, asset, tmp, logger)
	dlCancel()
	if err != nil {
		return nil, releaseError("download release asset", asset.Name, err)
	}

	logger.Info("extracting archive")
	source, err := archive.ExtractZip(dl.Path, filepath.Join(tmp, "extract"), logger)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("extract archive").
			WithResource(asset.Name).
			WithSuggestion("Re-run the command to download a fresh copy").
			Wrap(err).
			BuildError()
	}

	logger.Info("copying libraries")
	dlls, err := bundle.CopyDLLs(source, p.output, logger)
	if err != nil {
		return nil, issue.WrapWithContext(err, "copy DLLs", p.output)
	}
	if p.includeHeaders {
		if _, err := bundle.CopyHeaders(source, p.output, logger); err != nil {
			return nil, issue.WrapWithContext(err, "copy headers", p.output)
		}
	}
	if _, err := bundle.CopyPkgConfig(source, p.output, logger); err != nil {
		return nil, issue.WrapWithContext(err, "copy pkg-config files", p.output)
	}

	manifest := bundle.Manifest{
		Platform:     platform.TargetWindows.String(),
		Version:      version,
		Architecture: arch.String(),
		ReleaseTag:   rel.TagName,
		BuildType:    buildType.String(),
		SourcePage:   client.PageURL(),
		DownloadURL:  asset.BrowserDownloadURL,
		Filename:     asset.Name,
		SHA256:       dl.SHA256,
		Headers:      p.includeHeaders,
		GeneratedAt:  s.app.Now().UTC(),
		Libraries:    dlls,
	}
	if err := s.writeMetadata(p.output, manifest); err != nil {
		return nil, err
	}

	printSummary(out, []summaryRow{
		{"libvips version", version},
		{"Release tag", rel.TagName},
		{"Architecture", arch.String()},
		{"Build type", buildType.String()},
		{"DLLs copied", strconv.Itoa(len(dlls))},
		{"SHA-256", dl.SHA256},
		{"Output directory", p.output},
	})
	if err := s.printListing(p.output); err != nil {
		return nil, err
	}
	return &manifest, nil
}

func invalidFlagError(flag string, err error, suggestion string) error {
	return issue.NewErrorContext().
		WithOperation("parse --" + flag).
		WithSuggestion(suggestion).
		Wrap(err).
		BuildError()
}

func releaseError(op, resource string, err error) error {
	ctx := issue.NewErrorContext().
		WithOperation(op).
		WithResource(resource)

	var rateErr *release.RateLimitError
	switch {
	case errors.As(err, &rateErr):
		ctx = ctx.WithIssue(issue.RateLimitedId).
			WithSuggestion("Set GITHUB_TOKEN to raise the rate limit")
	case errors.Is(err, release.ErrReleaseNotFound):
		ctx = ctx.WithIssue(issue.DownloadFailedId).
			WithSuggestion("Check the version against " + resource)
	default:
		ctx = ctx.WithIssue(issue.DownloadFailedId).
			WithSuggestion("Check your network connection and retry")
	}
	return ctx.Wrap(err).BuildError()
}
