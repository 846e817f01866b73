// SPDX-License-Identifier: MPL-2.0

// Package release locates and downloads pre-built libvips archives published
// as GitHub release assets (libvips/build-win64-mxe by default).
//
// The client only attaches GITHUB_TOKEN to requests aimed at GitHub hosts,
// reports exhausted rate limits as *RateLimitError, and caps JSON responses
// at 10 MB.
package release
