// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers shared by the bundler's tests: Must*
// filesystem helpers that fail the test on error, a scripted fake for
// toolexec.Executor, and a logger that writes into a buffer.
package testutil
