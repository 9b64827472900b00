package main

import (
	"fmt"
	"os"

	"github.com/impawawa/Final-Project/internal/cmd"
)

// Set via ldflags: -X main.version=1.0.0 -X main.commit=abc123
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, buildDate)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
