// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against an embedded schema and
// turns CUE errors into messages that point at the offending field.
//
//	values, err := cueutil.DecodeMap(schema, "#Config", data, "config.cue")
//	if err != nil {
//	    return err // e.g. "config.cue: linux.system_roots[1]: conflicting values"
//	}
package cueutil
