// ABOUTME: Entry point for the iterable-mcp binary
// ABOUTME: Delegates to the cobra command tree

package main

import (
	"os"

	"github.com/iterable-tools/iterable-mcp/cmd/iterable-mcp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
