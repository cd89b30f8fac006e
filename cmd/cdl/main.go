package main

import (
	"os"

	"github.com/verist/cdl/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands print their own diagnostics; only the exit code
		// remains to be propagated.
		os.Exit(cli.GetExitCode(err))
	}
}
