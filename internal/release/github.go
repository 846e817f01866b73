// SPDX-License-Identifier: MPL-2.0

package release

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	// DefaultOwner and DefaultRepo name the upstream Windows build repository.
	DefaultOwner = "libvips"
	DefaultRepo  = "build-win64-mxe"

	// DefaultBaseURL is the GitHub REST API root.
	DefaultBaseURL = "https://api.github.com"

	// DefaultUserAgent identifies the bundler to GitHub.
	DefaultUserAgent = "vipsbundle"

	// LatestVersion requests the newest published release.
	LatestVersion = "latest"

	maxJSONResponseBytes = 10 << 20
)

// ErrReleaseNotFound is returned when a requested release tag does not exist.
var ErrReleaseNotFound = errors.New("release not found")

type (
	// RateLimitError is returned when the GitHub API rate limit is exhausted.
	RateLimitError struct {
		Limit     int
		Remaining int
		ResetAt   time.Time
	}

	// Release is a published GitHub release and its downloadable assets.
	Release struct {
		TagName string
		Name    string
		HTMLURL string
		Assets  []Asset
	}

	// Asset is one downloadable file attached to a release.
	Asset struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
		Size               int64  `json:"size"`
		ContentType        string `json:"content_type"`
	}

	githubRelease struct {
		TagName string  `json:"tag_name"`
		Name    string  `json:"name"`
		HTMLURL string  `json:"html_url"`
		Assets  []Asset `json:"assets"`
	}

	// Client talks to the GitHub Releases API for one repository.
	Client struct {
		httpClient *http.Client
		owner      string
		repo       string
		baseURL    string
		token      string
		userAgent  string
	}

	// ClientOption configures a Client during construction.
	ClientOption func(*Client)
)

// Error formats the rate limit details as a human-readable message.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("GitHub API rate limit exceeded (%d remaining, resets at %s)",
		e.Remaining, e.ResetAt.UTC().Format("15:04 UTC"))
}

// WithHTTPClient sets the HTTP client, typically to apply a timeout.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(g *Client) { g.httpClient = c }
}

// WithBaseURL overrides the API root, primarily for test servers.
func WithBaseURL(base string) ClientOption {
	return func(g *Client) { g.baseURL = strings.TrimRight(base, "/") }
}

// WithToken sets a GitHub token for authenticated requests.
func WithToken(token string) ClientOption {
	return func(g *Client) { g.token = token }
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(g *Client) { g.userAgent = ua }
}

// WithRepo overrides the repository owner and name.
func WithRepo(owner, repo string) ClientOption {
	return func(g *Client) {
		g.owner = owner
		g.repo = repo
	}
}

// NewClient creates a Client for libvips/build-win64-mxe on api.github.com.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		owner:      DefaultOwner,
		repo:       DefaultRepo,
		baseURL:    DefaultBaseURL,
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PageURL returns the browser URL listing the repository's releases.
func (c *Client) PageURL() string {
	return fmt.Sprintf("https://github.com/%s/%s/releases", c.owner, c.repo)
}

// Latest fetches the newest non-draft, non-prerelease release.
func (c *Client) Latest(ctx context.Context) (*Release, error) {
	return c.getRelease(ctx, fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, c.owner, c.repo), LatestVersion)
}

// ByTag fetches the release tagged tag.
func (c *Client) ByTag(ctx context.Context, tag string) (*Release, error) {
	return c.getRelease(ctx, fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s", c.baseURL, c.owner, c.repo, url.PathEscape(tag)), tag)
}

// ForVersion resolves a user-supplied version: "latest" (or empty) selects
// the newest release; "8.16.0" and "v8.16.0" both select tag "v8.16.0".
// A version that is not valid semver is looked up as a literal tag.
func (c *Client) ForVersion(ctx context.Context, version string) (*Release, error) {
	if version == "" || strings.EqualFold(version, LatestVersion) {
		return c.Latest(ctx)
	}
	return c.ByTag(ctx, TagForVersion(version))
}

// TagForVersion normalizes a version to the upstream "vX.Y.Z" tag form.
func TagForVersion(version string) string {
	tag := version
	if !strings.HasPrefix(tag, "v") {
		tag = "v" + tag
	}
	if semver.IsValid(tag) {
		return tag
	}
	return version
}

func (c *Client) getRelease(ctx context.Context, reqURL, label string) (*Release, error) {
	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("getting release %s: %w", label, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkRateLimit(resp); err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrReleaseNotFound, label)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("getting release %s: unexpected status %d", label, resp.StatusCode)
	}

	var gr githubRelease
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(&gr); err != nil {
		return nil, fmt.Errorf("getting release %s: decoding response: %w", label, err)
	}
	return &Release{TagName: gr.TagName, Name: gr.Name, HTMLURL: gr.HTMLURL, Assets: gr.Assets}, nil
}

// DownloadAsset opens the asset at assetURL. The caller closes the body.
// The second return value is the Content-Length, or -1 when unknown.
func (c *Client) DownloadAsset(ctx context.Context, assetURL string) (io.ReadCloser, int64, error) {
	resp, err := c.doRequest(ctx, assetURL)
	if err != nil {
		return nil, 0, fmt.Errorf("downloading asset %s: %w", redactURL(assetURL), err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("downloading asset %s: unexpected status %d", redactURL(assetURL), resp.StatusCode)
	}
	return resp.Body, resp.ContentLength, nil
}

func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", c.userAgent)

	// Asset downloads redirect to a CDN; the token must not follow them there.
	if c.token != "" && isGitHubHost(req.URL, c.baseURL) {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}

// checkRateLimit returns a RateLimitError when X-RateLimit-Remaining is zero.
func checkRateLimit(resp *http.Response) error {
	rem, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining"))
	if err != nil || rem > 0 {
		return nil //nolint:nilerr // absent or malformed header means no limit information
	}

	limit, _ := strconv.Atoi(resp.Header.Get("X-RateLimit-Limit"))                 //nolint:errcheck // best-effort
	resetUnix, _ := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64) //nolint:errcheck // best-effort
	return &RateLimitError{Limit: limit, Remaining: 0, ResetAt: time.Unix(resetUnix, 0)}
}

// isGitHubHost reports whether reqURL targets the configured API host, or
// github.com when the API is api.github.com.
func isGitHubHost(reqURL *url.URL, baseURL string) bool {
	base, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	if strings.EqualFold(reqURL.Host, base.Host) {
		return true
	}
	return strings.EqualFold(base.Host, "api.github.com") && strings.EqualFold(reqURL.Host, "github.com")
}

// redactURL strips query parameters and fragments for safe logging.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
