// SPDX-License-Identifier: MPL-2.0

// Package toolexec runs the external tools the bundler depends on (brew, readelf,
// otool, patchelf, install_name_tool, codesign) and captures their
// output, exit code and stderr.
//
// Every invocation is logged at debug level as a shell-quoted command line.
// Tests substitute the process factory with WithExecCommand.
package toolexec
