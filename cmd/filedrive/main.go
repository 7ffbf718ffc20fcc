// Command filedrive is the FileDrive cloud file picker: a GUI picker window
// by default, with CLI subcommands for scripted access.
package main

import (
	"fmt"
	"os"

	"github.com/jodinathan/filedrive/internal/cli"
	"github.com/jodinathan/filedrive/internal/version"
)

func main() {
	cli.Version = version.Version
	cli.BuildTime = version.BuildTime

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
