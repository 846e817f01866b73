// SPDX-License-Identifier: MPL-2.0

// Package binfmt adapts the bundler to a platform's shared-library format.
//
// Each Format knows how the platform names libvips, which tool lists a
// binary's link dependencies, and how to make a copied binary resolve its
// siblings relative to its own directory. The variant is picked once per run
// by ForTarget.
package binfmt
