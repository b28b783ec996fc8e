// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the inkstand command tree.
//
// Every command that touches articles opens the store for its own
// duration and closes it before returning. The store directory is
// locked while open, so snapshot commands (backup, restore, archive,
// unarchive) refuse to run beside another inkstand process using the
// same store.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/inkstand/inkstand/cmd/inkstand/cli"
	"github.com/inkstand/inkstand/lib/clock"
	"github.com/inkstand/inkstand/lib/version"
)

// Options holds what the command tree shares across commands.
type Options struct {
	// Out receives command output. Defaults to os.Stdout.
	Out io.Writer

	// Level is the logger's level, set from the loaded config's
	// log.level. May be nil when the caller's logger ignores it.
	Level *slog.LevelVar

	// Clock stamps articles and snapshots. Nil uses the real clock.
	Clock clock.Clock
}

// env is the per-tree state every command closure captures.
type env struct {
	out   io.Writer
	level *slog.LevelVar
	clock clock.Clock
}

// Root builds the inkstand command tree.
func Root(options Options) *cli.Command {
	e := &env{out: options.Out, level: options.Level, clock: options.Clock}
	if e.out == nil {
		e.out = os.Stdout
	}
	if e.clock == nil {
		e.clock = clock.Real()
	}

	return &cli.Command{
		Name: "inkstand",
		Description: `Inkstand: a local article store with revision history.

Articles are markdown documents with a title, introduction, and tags.
Each edit keeps the previous revision, up to history.max_history.
Articles start as drafts and are published with "inkstand publish".
The whole store can be backed up to a directory or a single
compressed (optionally encrypted) archive file.`,
		Subcommands: []*cli.Command{
			createCommand(e),
			editCommand(e),
			deleteCommand(e),
			existsCommand(e),
			listCommand(e),
			showCommand(e),
			getCommand(e),
			publishCommand(e),
			statusCommand(e),
			statsCommand(e),
			historyCommand(e),
			renderCommand(e),
			importCommand(e),
			exportCommand(e),
			backupCommand(e),
			restoreCommand(e),
			archiveCommand(e),
			unarchiveCommand(e),
			verifyCommand(e),
			browseCommand(e),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(context.Context, []string, *slog.Logger) error {
					fmt.Fprintf(e.out, "inkstand %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Create a draft",
				Command:     "inkstand create --title 'Release notes' --content-file notes.md --tag release",
			},
			{
				Description: "List published articles tagged release",
				Command:     "inkstand list --published --tag release",
			},
			{
				Description: "Browse and publish interactively",
				Command:     "inkstand browse",
			},
			{
				Description: "Write an encrypted archive of the whole store",
				Command:     "inkstand archive store.inkstand --passphrase-file ~/.inkstand-pass",
			},
		},
	}
}
