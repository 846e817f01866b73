// SPDX-License-Identifier: MPL-2.0

// Package brew queries Homebrew and Linuxbrew for installation prefixes and
// formula versions.
package brew
