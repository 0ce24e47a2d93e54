// Command regdesk serves the registration lookup, cancel and confirm API
// backed by a spreadsheet.
package main

import (
	"fmt"
	"os"

	"regdesk/internal/platform/health"
)

// Build information injected via ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	health.Version = version
	root := newRootCmd(fmt.Sprintf("%s (commit: %s)", version, commit))
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
