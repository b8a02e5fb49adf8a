// Package main provides the entry point for the atlas CLI.
package main

import (
	"os"

	"github.com/genbalog/atlas/cmd/atlas/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
