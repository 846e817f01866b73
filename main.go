// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/vipsbundle/vipsbundle/cmd/vipsbundle"

func main() {
	cmd.Execute()
}
