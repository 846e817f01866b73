// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// Setup failures carry an operation, the resource involved, and suggestions.
// They may also link a Markdown remediation page from the catalog, rendered with glamour.
package issue
