// Package main provides the assetwrap CLI.
package main

import (
	"errors"
	"os"

	"github.com/leapstack-labs/assetwrap/internal/cli"
	"github.com/leapstack-labs/assetwrap/internal/cli/commands"
)

// Exit codes.
const (
	exitOK          = 0
	exitError       = 1
	exitBuildFailed = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	err := cli.Execute()
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, commands.ErrBuildFailed):
		return exitBuildFailed
	default:
		return exitError
	}
}
