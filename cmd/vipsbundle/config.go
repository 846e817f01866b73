// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/vipsbundle/vipsbundle/internal/config"
	"github.com/vipsbundle/vipsbundle/internal/issue"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `vipsbundle config` command tree.
func newConfigCommand(app *App, flags *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vipsbundle configuration",
		Long: `Manage vipsbundle configuration.

Configuration is stored in:
  - Linux: ~/.config/vipsbundle/config.cue
  - macOS: ~/Library/Application Support/vipsbundle/config.cue
  - Windows: %APPDATA%\vipsbundle\config.cue

VIPSBUNDLE_<SECTION>_<KEY> environment variables override file values, and
GITHUB_TOKEN authenticates GitHub API requests.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true

			cfg, path, err := app.Config.LoadWithSource(cmd.Context(), config.LoadOptions{ConfigFilePath: flags.configPath})
			if err != nil {
				return reportSetupError(app.stderr, err, flags.verbose, issue.ConfigLoadFailedId)
			}
			source := path
			if source == "" {
				source = "built-in defaults"
			}
			fmt.Fprintln(app.stdout, SubtitleStyle.Render("// source: "+source))
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			if cfg.Windows.Token != "" {
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("// GITHUB_TOKEN is set"))
			}
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := config.CreateDefaultConfig()
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintln(app.stdout, SuccessStyle.Render("Created ")+ValueStyle.Render(path))
			} else {
				fmt.Fprintln(app.stdout, WarningStyle.Render("Config already exists: ")+ValueStyle.Render(path))
			}
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	return cfgCmd
}
