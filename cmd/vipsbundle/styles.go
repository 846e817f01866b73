// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vipsbundle/vipsbundle/pkg/bundle"

	"github.com/charmbracelet/lipgloss"
)

// Color palette shared by all CLI output, tuned for dark terminals.
const (
	// ColorPrimary is purple - used for titles and headers.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is gray - used for subtitles and secondary text.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorSuccess is green - used for success states.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorError is red - used for errors.
	ColorError = lipgloss.Color("#EF4444")

	// ColorWarning is amber - used for warnings and degraded results.
	ColorWarning = lipgloss.Color("#F59E0B")

	// ColorHighlight is blue - used for paths and values.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for error messages.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for warnings.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// ValueStyle is for paths and values in the summary.
	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Border(lipgloss.DoubleBorder(), true, false).
			BorderForeground(ColorPrimary).
			Width(60)

	labelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Width(20)
)

// summaryRow is one "label: value" line of the summary block.
type summaryRow struct {
	label string
	value string
}

// printBanner writes the boxed run title.
func printBanner(w io.Writer, title string) {
	fmt.Fprintln(w, bannerStyle.Render(title))
}

// printSummary writes the summary block for a finished bundle.
func printSummary(w io.Writer, rows []summaryRow) {
	fmt.Fprintln(w)
	printBanner(w, "Summary")
	for _, r := range rows {
		fmt.Fprintln(w, labelStyle.Render(r.label+":")+ValueStyle.Render(r.value))
	}
}

// printFileListing writes every bundle file with its size, then "Done!".
func printFileListing(w io.Writer, files []bundle.FileEntry) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Files in output directory:"))
	for _, f := range files {
		fmt.Fprintf(w, "  %s %s\n", f.Rel, SubtitleStyle.Render("("+groupDigits(f.Size)+" bytes)"))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, SuccessStyle.Render("Done!"))
}

// groupDigits renders n with comma thousands separators.
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
