// Command beltline computes factory flow rates and edge balance.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/beltline/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
