// SPDX-License-Identifier: MPL-2.0

// Package verify re-reads a finished bundle and reports every intra-bundle
// dependency reference that would still resolve outside the bundle.
package verify
