// SPDX-License-Identifier: MPL-2.0

package binfmt

import "errors"

// LoaderTrace is unavailable on Windows hosts; ELF listing uses readelf.
func LoaderTrace(string) ([]string, error) {
	return nil, errors.New("loader trace is not supported on windows")
}
