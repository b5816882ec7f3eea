// Package main provides the entry point for the cif CLI.
package main

import (
	"fmt"
	"os"

	"github.com/Sumatoshi-tech/cif/cmd/cif/commands"
	"github.com/Sumatoshi-tech/cif/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	err := commands.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
