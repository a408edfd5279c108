// Command filterctl is the operator CLI for filter states, saved filters
// and nearby-place ranking.
package main

import (
	"fmt"
	"os"

	"listing-search-workers/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
