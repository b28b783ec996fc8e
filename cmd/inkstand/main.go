// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

// Inkstand is a local article store with revision history, publishing,
// and backups. Run "inkstand --help" for the command list.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/inkstand/inkstand/cmd/inkstand/cli"
	"github.com/inkstand/inkstand/cmd/inkstand/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own result (exists, verify) return
		// an ExitError; no "error:" line for those.
		var exitError *cli.ExitError
		if errors.As(err, &exitError) {
			os.Exit(exitError.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	level := new(slog.LevelVar)
	logger := cli.NewCommandLogger(os.Stderr, level)

	root := commands.Root(commands.Options{Out: os.Stdout, Level: level})
	return root.Execute(ctx, os.Args[1:], logger)
}

// exitCode distinguishes bad input (2) from every other failure (1).
func exitCode(err error) int {
	if cli.CategoryOf(err) == cli.CategoryValidation {
		return 2
	}
	return 1
}
