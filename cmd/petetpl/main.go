// Command petetpl is a small demonstration CLI over package petetpl, built
// with the same cobra/pflag command-tree shape cue/cmd/cue/cmd uses for its
// own subcommands.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
