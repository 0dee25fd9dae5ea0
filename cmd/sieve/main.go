// Command sieve parses query-string filter and sort criteria and applies
// them to records.
package main

import (
	"os"

	"github.com/roach88/sieve/internal/cli"
)

func main() {
	os.Exit(cli.Main(os.Args[1:], os.Stdout, os.Stderr))
}
