// Package main provides the entry point for the nvsearch CLI.
package main

import (
	"os"

	"github.com/notevault/retrieval/cmd/nvsearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
