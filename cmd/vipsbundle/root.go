// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vipsbundle/vipsbundle/internal/issue"
	"github.com/vipsbundle/vipsbundle/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlags holds the persistent flags shared by every subcommand.
type rootFlags struct {
	verbose    bool
	configPath string
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "vipsbundle",
		Short: "Bundle prebuilt libvips with its shared-library dependencies",
		Long: TitleStyle.Render("vipsbundle") + SubtitleStyle.Render(" - redistributable libvips bundles") + `

vipsbundle copies a prebuilt libvips and every shared library it needs into
one directory, then rewrites library search paths so the directory can be
shipped next to an application.

` + SubtitleStyle.Render("Sources:") + `
  linux     Homebrew on Linux (ELF, patched with patchelf)
  macos     Homebrew on macOS (Mach-O, patched with install_name_tool)
  windows   GitHub releases of libvips/build-win64-mxe (DLLs)

` + SubtitleStyle.Render("Examples:") + `
  vipsbundle linux -o dist/linux --include-headers
  vipsbundle macos -o dist/macos
  vipsbundle windows -o dist/windows -a arm64 -b all -V 8.16.1
  vipsbundle verify -o dist/linux`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is $HOME/.config/vipsbundle/config.cue)")

	rootCmd.AddCommand(newLinuxCommand(app, flags))
	rootCmd.AddCommand(newMacOSCommand(app, flags))
	rootCmd.AddCommand(newWindowsCommand(app, flags))
	rootCmd.AddCommand(newVerifyCommand(app, flags))
	rootCmd.AddCommand(newConfigCommand(app, flags))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) && exitErr.Code.Validate() == nil {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(int(types.ExitSetupFailure))
	}
}

// handleError lets fang print errors that were not already reported by a
// command handler.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

// reportSetupError prints err with its suggestions, renders the linked
// remediation page (or fallback when none is linked), and returns the
// ExitError that ends the run with the setup-failure code.
func reportSetupError(w io.Writer, err error, verbose bool, fallback issue.Id) error {
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))

	page := issue.RemediationFor(err)
	if page == nil && fallback != 0 {
		page = issue.Get(fallback)
	}
	if page != nil {
		if rendered, renderErr := page.Render("auto"); renderErr == nil {
			fmt.Fprint(w, rendered)
		}
	}
	return &ExitError{Code: types.ExitSetupFailure, Err: err}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
