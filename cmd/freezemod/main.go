// Command freezemod regenerates the frozen module tables of a source tree.
package main

import "martianoff/freezemod/cmd/freezemod/commands"

func main() {
	commands.Execute()
}
