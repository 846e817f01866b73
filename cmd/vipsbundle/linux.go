// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/vipsbundle/vipsbundle/internal/issue"
	"github.com/vipsbundle/vipsbundle/pkg/platform"

	"github.com/spf13/cobra"
)

// newLinuxCommand creates `vipsbundle linux`.
func newLinuxCommand(app *App, flags *rootFlags) *cobra.Command {
	p := brewParams{target: platform.TargetLinux}

	cmd := &cobra.Command{
		Use:   "linux",
		Short: "Bundle libvips from Homebrew on Linux",
		Long: `Bundle libvips from Homebrew on Linux.

The ELF dependency closure of libvips.so is copied into <output>/lib. System
libraries under /lib and /usr/lib are left to the target system, except for
the C++ runtime which is always bundled. Each copied library then gets an
RPATH of $ORIGIN so it finds its siblings (requires patchelf).`,
		Example: `  vipsbundle linux -o dist/linux
  vipsbundle linux -o dist/linux --include-headers
  vipsbundle linux -o dist/linux --fix-rpath=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBrewCommand(cmd, app, flags, p)
		},
	}

	cmd.Flags().StringVarP(&p.output, "output", "o", "", "output directory for the bundle")
	cmd.Flags().BoolVar(&p.includeHeaders, "include-headers", false, "also copy header files (vips and glib)")
	cmd.Flags().BoolVar(&p.fixPaths, "fix-rpath", true, "set RPATH to $ORIGIN for redistribution")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// runBrewCommand is the RunE body shared by the linux and macos commands.
func runBrewCommand(cmd *cobra.Command, app *App, flags *rootFlags, p brewParams) error {
	cmd.SilenceErrors = true

	s, err := app.newSession(cmd.Context(), flags)
	if err != nil {
		return reportSetupError(app.stderr, err, flags.verbose, issue.ConfigLoadFailedId)
	}
	if _, err := s.runBrew(cmd.Context(), p); err != nil {
		return reportSetupError(app.stderr, err, flags.verbose, 0)
	}
	return nil
}
