// SPDX-License-Identifier: MPL-2.0

// Package rewrite patches every binary in a materialized bundle so its
// bundled dependencies resolve relative to the bundle directory.
package rewrite
