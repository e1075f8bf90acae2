// Command jcodec encodes, decodes, compares and sorts JSON values with a
// schema-specialized binary codec.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/jcodec/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
