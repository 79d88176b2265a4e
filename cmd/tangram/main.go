// Command tangram renders Tangram template sources to text, or serves
// a health/reflection daemon under `tangram serve ADDR` (spec.md §6).
package main

import (
	"os"

	"github.com/tangramlang/tangram/pkg/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
