// Command issuectl is a command-line client for the issue tracker API.
package main

import (
	"fmt"
	"os"

	"github.com/ignite/issue-tracker/internal/pkg/output"
)

func main() {
	if err := newRootCmd(output.New()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
