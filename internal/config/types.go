// SPDX-License-Identifier: MPL-2.0

package config

import (
	"time"

	"github.com/vipsbundle/vipsbundle/internal/release"
)

type (
	// Config is the full vipsbundle configuration.
	Config struct {
		Homebrew HomebrewConfig `json:"homebrew" mapstructure:"homebrew"`
		Linux    LinuxConfig    `json:"linux" mapstructure:"linux"`
		MacOS    MacOSConfig    `json:"macos" mapstructure:"macos"`
		Windows  WindowsConfig  `json:"windows" mapstructure:"windows"`
	}

	// HomebrewConfig locates the package manager and the packages to bundle.
	HomebrewConfig struct {
		// Binary is the brew executable name or path.
		Binary string `json:"binary" mapstructure:"binary"`
		// Package is the formula whose library is the closure root.
		Package string `json:"package" mapstructure:"package"`
		// HeaderPackages are extra formulae whose include trees are merged
		// when headers are requested.
		HeaderPackages []string `json:"header_packages" mapstructure:"header_packages"`
	}

	// LinuxConfig tunes ELF classification.
	LinuxConfig struct {
		SystemRoots  []string `json:"system_roots" mapstructure:"system_roots"`
		AlwaysBundle []string `json:"always_bundle" mapstructure:"always_bundle"`
	}

	// MacOSConfig tunes Mach-O classification and rewriting.
	MacOSConfig struct {
		SystemRoots      []string `json:"system_roots" mapstructure:"system_roots"`
		AlwaysBundle     []string `json:"always_bundle" mapstructure:"always_bundle"`
		InstallNameToken string   `json:"install_name_token" mapstructure:"install_name_token"`
		Codesign         bool     `json:"codesign" mapstructure:"codesign"`
	}

	// WindowsConfig points at the prebuilt release repository.
	WindowsConfig struct {
		Owner           string        `json:"owner" mapstructure:"owner"`
		Repo            string        `json:"repo" mapstructure:"repo"`
		APIBaseURL      string        `json:"api_base_url" mapstructure:"api_base_url"`
		UserAgent       string        `json:"user_agent" mapstructure:"user_agent"`
		APITimeout      time.Duration `json:"api_timeout" mapstructure:"api_timeout"`
		DownloadTimeout time.Duration `json:"download_timeout" mapstructure:"download_timeout"`
		// Token is read from GITHUB_TOKEN only and never written to disk.
		Token string `json:"-" mapstructure:"token"`
	}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Homebrew: HomebrewConfig{
			Binary:         "brew",
			Package:        "vips",
			HeaderPackages: []string{"glib"},
		},
		Linux: LinuxConfig{
			SystemRoots:  []string{"/lib", "/lib64", "/usr/lib", "/usr/lib64"},
			AlwaysBundle: []string{"libstdc++", "libgcc_s"},
		},
		MacOS: MacOSConfig{
			SystemRoots:      []string{"/usr/lib", "/System"},
			AlwaysBundle:     []string{},
			InstallNameToken: "@rpath",
			Codesign:         false,
		},
		Windows: WindowsConfig{
			Owner:           release.DefaultOwner,
			Repo:            release.DefaultRepo,
			APIBaseURL:      release.DefaultBaseURL,
			UserAgent:       release.DefaultUserAgent,
			APITimeout:      30 * time.Second,
			DownloadTimeout: 300 * time.Second,
		},
	}
}
