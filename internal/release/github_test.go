// SPDX-License-Identifier: MPL-2.0

package release

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"
)

func releaseServer(t *testing.T, routes map[string]githubRelease) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rel, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(rel); err != nil {
			t.Errorf("encoding release: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_ForVersion(t *testing.T) {
	t.Parallel()

	srv := releaseServer(t, map[string]githubRelease{
		"/repos/libvips/build-win64-mxe/releases/latest":       {TagName: "v8.16.1"},
		"/repos/libvips/build-win64-mxe/releases/tags/v8.15.0": {TagName: "v8.15.0"},
		"/repos/libvips/build-win64-mxe/releases/tags/nightly": {TagName: "nightly"},
	})
	c := NewClient(WithBaseURL(srv.URL + "/"))

	tests := []struct {
		version string
		want    string
	}{
		{"latest", "v8.16.1"},
		{"", "v8.16.1"},
		{"8.15.0", "v8.15.0"},
		{"v8.15.0", "v8.15.0"},
		{"nightly", "nightly"},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			t.Parallel()

			rel, err := c.ForVersion(t.Context(), tt.version)
			if err != nil {
				t.Fatalf("ForVersion(%q) error = %v", tt.version, err)
			}
			if rel.TagName != tt.want {
				t.Errorf("TagName = %q, want %q", rel.TagName, tt.want)
			}
		})
	}

	if _, err := c.ForVersion(t.Context(), "9.0.0"); !errors.Is(err, ErrReleaseNotFound) {
		t.Errorf("ForVersion(9.0.0) error = %v, want ErrReleaseNotFound", err)
	}
}

func TestClient_RateLimited(t *testing.T) {
	t.Parallel()

	reset := time.Now().Add(time.Hour).Unix()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset, 10))
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).Latest(t.Context())
	var rlErr *RateLimitError
	if !errors.As(err, &rlErr) {
		t.Fatalf("error = %v, want *RateLimitError", err)
	}
	if rlErr.Limit != 60 || rlErr.ResetAt.Unix() != reset {
		t.Errorf("RateLimitError = %+v", rlErr)
	}
}

func TestClient_TokenOnlySentToGitHubHost(t *testing.T) {
	t.Parallel()

	var apiAuth, cdnAuth, ua string
	cdn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cdnAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("zip"))
	}))
	defer cdn.Close()
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiAuth = r.Header.Get("Authorization")
		ua = r.Header.Get("User-Agent")
		_ = json.NewEncoder(w).Encode(githubRelease{TagName: "v8.16.1"})
	}))
	defer api.Close()

	c := NewClient(WithBaseURL(api.URL), WithToken("secret"), WithUserAgent("vipsbundle/test"))
	if _, err := c.Latest(t.Context()); err != nil {
		t.Fatal(err)
	}
	body, _, err := c.DownloadAsset(t.Context(), cdn.URL+"/vips.zip")
	if err != nil {
		t.Fatal(err)
	}
	body.Close()

	if apiAuth != "Bearer secret" {
		t.Errorf("API Authorization = %q", apiAuth)
	}
	if cdnAuth != "" {
		t.Errorf("token leaked to CDN host: %q", cdnAuth)
	}
	if ua != "vipsbundle/test" {
		t.Errorf("User-Agent = %q", ua)
	}
}

func TestClient_DownloadAssetStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, _, err := NewClient().DownloadAsset(t.Context(), srv.URL+"/a.zip?X-Amz-Signature=abc")
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), "X-Amz-Signature") {
		t.Errorf("error should be redacted, got %q", err.Error())
	}
}

func TestIsGitHubHost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		req  string
		base string
		want bool
	}{
		{"https://api.github.com/repos/x", "https://api.github.com", true},
		{"https://github.com/libvips/build-win64-mxe/releases/download/v8.16.1/a.zip", "https://api.github.com", true},
		{"https://objects.githubusercontent.com/a.zip", "https://api.github.com", false},
		{"http://127.0.0.1:9/a", "http://127.0.0.1:9", true},
	}
	for _, tt := range tests {
		u, err := url.Parse(tt.req)
		if err != nil {
			t.Fatal(err)
		}
		if got := isGitHubHost(u, tt.base); got != tt.want {
			t.Errorf("isGitHubHost(%s, %s) = %v, want %v", tt.req, tt.base, got, tt.want)
		}
	}
}

func TestTagForVersion(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{"8.16.0": "v8.16.0", "v8.16.0": "v8.16.0", "8.16": "v8.16", "nightly": "nightly"} {
		if got := TagForVersion(in); got != want {
			t.Errorf("TagForVersion(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPageURL(t *testing.T) {
	t.Parallel()

	if got := NewClient().PageURL(); got != "https://github.com/libvips/build-win64-mxe/releases" {
		t.Errorf("PageURL() = %q", got)
	}
}
