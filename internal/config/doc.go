// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/vipsbundle/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/vipsbundle/config.cue on macOS, %APPDATA%\vipsbundle\config.cue
// on Windows). Every field is optional; built-in defaults cover the Homebrew and
// GitHub release sources. VIPSBUNDLE_* environment variables override file values and
// GITHUB_TOKEN authenticates release API requests.
//
// Files are validated against an embedded CUE schema (config_schema.cue) before they
// are merged into Viper.
package config
