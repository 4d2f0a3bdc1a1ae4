// Command irdcheck decodes a PS3 IRD sidecar and prints, md5sums, or
// verifies it against a game directory, per spec.md §6.
package main

import (
	"os"

	"github.com/s0up4200/irdcheck/cmd/irdcheck/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
