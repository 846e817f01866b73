// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

// Id identifies a remediation page.
type Id int

const (
	HomebrewNotFoundId Id = iota + 1
	RootLibraryNotFoundId
	NoMatchingAssetId
	DownloadFailedId
	ConfigLoadFailedId
	PatchToolMissingId
	RateLimitedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the page through glamour with the given style ("dark",
// "light", "notty", or a path to a JSON style).
func (i *Issue) Render(stylePath string) (string, error) {
	var sb strings.Builder
	sb.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		sb.WriteString("\n\n## See also\n")
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			sb.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(sb.String(), stylePath)
}

var (
	render = glamour.Render

	homebrewNotFoundIssue = &Issue{
		id: HomebrewNotFoundId,
		mdMsg: `
# Homebrew could not be queried!

The bundler asks Homebrew where libvips is installed, and that lookup failed.

## Things you can try:
- Check that brew is on your PATH:
~~~
$ brew --prefix
~~~
- On Linux, load the Linuxbrew environment first:
~~~
$ eval "$(/home/linuxbrew/.linuxbrew/bin/brew shellenv)"
~~~
- Point the bundler at a specific binary with ` + "`homebrew: binary:`" + ` in config.cue`,
		extLinks: []HttpLink{"https://docs.brew.sh/Installation"},
	}

	rootLibraryNotFoundIssue = &Issue{
		id: RootLibraryNotFoundId,
		mdMsg: `
# libvips is not installed!

No libvips shared library was found under the Homebrew prefix.

## Things you can try:
- Install the formula:
~~~
$ brew install vips
~~~
- Check that the lib directory lists ` + "`libvips.so*`" + ` (Linux) or ` + "`libvips*.dylib`" + ` (macOS)`,
		extLinks: []HttpLink{"https://formulae.brew.sh/formula/vips"},
	}

	noMatchingAssetIssue = &Issue{
		id: NoMatchingAssetId,
		mdMsg: `
# No matching Windows build!

The release has no zip asset for the requested architecture and build type.

## Things you can try:
- Compare the requested values with the asset list printed above
- Pick another build type with ` + "`-b all`" + ` or ` + "`-b web`" + `
- Pin a release that ships your architecture with ` + "`-V X.Y.Z`",
		extLinks: []HttpLink{"https://github.com/libvips/build-win64-mxe/releases"},
	}

	downloadFailedIssue = &Issue{
		id: DownloadFailedId,
		mdMsg: `
# Download failed!

The release metadata or the archive could not be fetched.

## Things you can try:
- Check your network connection and proxy settings
- Raise ` + "`windows: download_timeout:`" + ` in config.cue for slow links
- Re-run the command; partial downloads are discarded`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Your configuration file could not be parsed or did not match the schema.

## Things you can try:
- Print the effective configuration:
~~~
$ vipsbundle config show
~~~
- Write a fresh default file and edit it:
~~~
$ vipsbundle config init
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	patchToolMissingIssue = &Issue{
		id: PatchToolMissingId,
		mdMsg: `
# Path rewriting was skipped!

The libraries were copied, but their search paths still point at the build machine.

## Things you can try:
- Linux:
~~~
$ sudo apt-get install patchelf
~~~
- macOS:
~~~
$ xcode-select --install
~~~
- Re-run the bundle, then check it:
~~~
$ vipsbundle verify -o <dir>
~~~`,
	}

	rateLimitedIssue = &Issue{
		id: RateLimitedId,
		mdMsg: `
# GitHub API rate limit exceeded!

Anonymous requests to the GitHub API are limited per hour.

## Things you can try:
- Export a token and retry:
~~~
$ export GITHUB_TOKEN=<token>
~~~
- Wait for the limit to reset`,
		extLinks: []HttpLink{"https://docs.github.com/en/rest/using-the-rest-api/rate-limits-for-the-rest-api"},
	}

	issues = map[Id]*Issue{
		homebrewNotFoundIssue.Id():    homebrewNotFoundIssue,
		rootLibraryNotFoundIssue.Id(): rootLibraryNotFoundIssue,
		noMatchingAssetIssue.Id():     noMatchingAssetIssue,
		downloadFailedIssue.Id():      downloadFailedIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		patchToolMissingIssue.Id():    patchToolMissingIssue,
		rateLimitedIssue.Id():         rateLimitedIssue,
	}
)

// Values returns every catalog page ordered by Id.
func Values() []*Issue {
	ids := maps.Keys(issues)
	slices.Sort(ids)

	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

// Get returns the page for id, or nil when the catalog has none.
func Get(id Id) *Issue {
	return issues[id]
}
