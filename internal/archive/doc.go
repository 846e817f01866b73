// SPDX-License-Identifier: MPL-2.0

// Package archive extracts downloaded release archives.
package archive
