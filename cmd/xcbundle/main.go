// Package main provides the entry point for the xcbundle CLI.
package main

import (
	"context"
	"os"

	"github.com/mrz1836/xcbundle/internal/cli"
)

// Set at build time via ldflags.
//
//nolint:gochecknoglobals // ldflags targets
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	info := cli.BuildInfo{Version: version, Commit: commit, Date: date}
	if err := cli.Execute(context.Background(), info); err != nil {
		os.Exit(cli.ExitCodeForError(err))
	}
}
