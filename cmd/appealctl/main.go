// appealctl runs the appeal pipeline from the command line.
package main

import (
	"os"

	"github.com/careloop/appealgen/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
