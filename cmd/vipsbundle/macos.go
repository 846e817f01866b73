// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/vipsbundle/vipsbundle/pkg/platform"

	"github.com/spf13/cobra"
)

// newMacOSCommand creates `vipsbundle macos`.
func newMacOSCommand(app *App, flags *rootFlags) *cobra.Command {
	p := brewParams{target: platform.TargetMacOS}

	cmd := &cobra.Command{
		Use:   "macos",
		Short: "Bundle libvips from Homebrew on macOS",
		Long: `Bundle libvips from Homebrew on macOS.

The Mach-O dependency closure of libvips.dylib is copied into <output>/lib.
Libraries under /usr/lib and /System are left to the OS. Install names and
references between bundled libraries are rewritten to @rpath/<name> with
install_name_tool (token and ad-hoc re-signing are configurable).`,
		Example: `  vipsbundle macos -o dist/macos
  vipsbundle macos -o dist/macos --include-headers --fix-paths=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBrewCommand(cmd, app, flags, p)
		},
	}

	cmd.Flags().StringVarP(&p.output, "output", "o", "", "output directory for the bundle")
	cmd.Flags().BoolVar(&p.includeHeaders, "include-headers", false, "also copy header files (vips and glib)")
	cmd.Flags().BoolVar(&p.fixPaths, "fix-paths", true, "rewrite install names for redistribution")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
