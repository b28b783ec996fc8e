// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates the structured logger for CLI commands,
// writing to file (normally os.Stderr). When file is a terminal it
// uses slog.TextHandler for human-readable output; when piped or
// redirected it uses slog.JSONHandler so scripts can parse it.
//
// level is read on every record, so passing a *slog.LevelVar lets a
// command raise or lower verbosity after loading its config.
func NewCommandLogger(file *os.File, level slog.Leveler) *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(file.Fd())) {
		handler = slog.NewTextHandler(file, options)
	} else {
		handler = slog.NewJSONHandler(file, options)
	}
	return slog.New(handler)
}

// IsTerminal reports whether file is attached to a terminal.
func IsTerminal(file *os.File) bool {
	return term.IsTerminal(int(file.Fd()))
}

// TerminalSize returns the width and height of the terminal file is
// attached to.
func TerminalSize(file *os.File) (int, int, error) {
	return term.GetSize(int(file.Fd()))
}
