// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the vipsbundle CLI commands.
//
// Each platform subcommand (linux, macos, windows) produces one redistributable
// directory: lib/ with the dependency closure, optional include/, lib/pkgconfig/,
// VERSION.txt and manifest.toml. The verify subcommand re-inspects a finished
// bundle and config manages the CUE configuration file.
package cmd
