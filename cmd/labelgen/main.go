// Package main runs the labelgen command line.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/labelgen/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "labelgen: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
