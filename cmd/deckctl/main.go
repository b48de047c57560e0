// Package main is the entry point for deckctl, the offline DeckPress CLI.
package main

import (
	"fmt"
	"os"

	"deckpress/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	cmd.SilenceErrors = true
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "deckctl:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
