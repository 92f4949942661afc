// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/invowk/modreport/cmd/modreport"

func main() {
	cmd.Execute()
}
