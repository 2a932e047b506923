// Package main provides the entry point for the perfmerge CLI.
package main

import (
	"os"

	"perfmerge/cmd/perfmerge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
