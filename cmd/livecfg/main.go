// Package main provides the entry point for the livecfg CLI.
package main

import (
	"fmt"
	"os"

	"github.com/livecfg/livecfg/cmd/livecfg/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
