// Command libris keeps the records of a small library: its catalog, its
// members and who holds which book.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/libris/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
