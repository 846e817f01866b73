// SPDX-License-Identifier: MPL-2.0

package testutil

// FakeTrace scripts loader traces by library path. Unknown paths trace to
// no dependencies, like unknown commands on FakeExecutor.
type FakeTrace map[string][]string

// Trace has the shape of binfmt.Tracer.
func (f FakeTrace) Trace(path string) ([]string, error) {
	return f[path], nil
}
