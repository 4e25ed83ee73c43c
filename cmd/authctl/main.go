// Command authctl is the command-line client for the gophauth server.
package main

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/client/cli"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd := cli.NewRootCmd()
	cmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
