// SPDX-License-Identifier: MPL-2.0

// Package bundle defines the on-disk layout of a redistributable libvips
// bundle and the files that describe it.
//
// Layout:
//
//	<output>/lib/*                 shared libraries
//	<output>/lib/pkgconfig/*.pc    pkg-config files (optional)
//	<output>/include/**            public headers (optional)
//	<output>/VERSION.txt           human-readable summary
//	<output>/manifest.toml         machine-readable Manifest
package bundle
