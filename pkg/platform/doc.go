// SPDX-License-Identifier: MPL-2.0

// Package platform names the bundle targets (linux, macos, windows) and maps
// Go's runtime identifiers onto the names written into bundle manifests.
package platform
