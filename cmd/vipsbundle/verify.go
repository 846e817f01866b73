// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/vipsbundle/vipsbundle/internal/issue"
	"github.com/vipsbundle/vipsbundle/internal/verify"
	"github.com/vipsbundle/vipsbundle/pkg/bundle"
	"github.com/vipsbundle/vipsbundle/pkg/platform"
	"github.com/vipsbundle/vipsbundle/pkg/types"

	"github.com/spf13/cobra"
)

// newVerifyCommand creates `vipsbundle verify`.
func newVerifyCommand(app *App, flags *rootFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that a bundle only references its own copies",
		Long: `Check that a bundle only references its own copies.

Every library in <output>/lib is listed again with the platform tool recorded
in manifest.toml. A reference to another bundled library that still points
outside the bundle is reported, and the command exits with status 1.`,
		Example: `  vipsbundle verify -o dist/linux`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceErrors = true

			s, err := app.newSession(cmd.Context(), flags)
			if err != nil {
				return reportSetupError(app.stderr, err, flags.verbose, issue.ConfigLoadFailedId)
			}
			findings, err := s.runVerify(cmd.Context(), output)
			if err != nil {
				return reportSetupError(app.stderr, err, flags.verbose, 0)
			}
			if len(findings) > 0 {
				return &ExitError{Code: types.ExitSetupFailure, Err: fmt.Errorf("%d references escape the bundle", len(findings))}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "bundle directory to check")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// runVerify checks the bundle at output against the format of its manifest.
func (s *session) runVerify(ctx context.Context, output string) ([]verify.Finding, error) {
	m, err := bundle.ReadManifest(output)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("read bundle manifest").
			WithResource(output).
			WithSuggestion("Point -o at a directory produced by 'vipsbundle linux|macos|windows'").
			Wrap(err).
			BuildError()
	}
	target := platform.Target(m.Platform)
	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("manifest platform: %w", err)
	}

	format, err := s.formatFor(target)
	if err != nil {
		return nil, err
	}
	findings, err := verify.Check(ctx, format, bundle.LibPath(output))
	if err != nil {
		return nil, err
	}

	w := s.app.stdout
	if len(findings) == 0 {
		fmt.Fprintln(w, SuccessStyle.Render(fmt.Sprintf("OK: %d libraries reference only bundled copies", len(m.Libraries))))
		return nil, nil
	}
	fmt.Fprintln(w, WarningStyle.Render(fmt.Sprintf("%d references escape the bundle:", len(findings))))
	for _, f := range findings {
		fmt.Fprintln(w, "  "+f.String())
	}
	if !m.Rewritten {
		fmt.Fprintln(w, SubtitleStyle.Render("The bundle was built without path rewriting."))
	}
	return findings, nil
}
