// SPDX-License-Identifier: MPL-2.0

// Package closure computes the transitive set of shared libraries a root
// library needs from a controlled package-manager prefix and copies each one,
// exactly once, into a flat output directory.
//
// The walk is depth-first. A library's filename is its identity: once a name
// is copied it is never visited again, which guards against diamonds and
// cycles in the dependency graph. Libraries under a system root are skipped
// unless their name is on the always-bundle list.
package closure
