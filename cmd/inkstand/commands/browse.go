// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/inkstand/inkstand/cmd/inkstand/cli"
	"github.com/inkstand/inkstand/lib/articleui"
)

func browseCommand(e *env) *cli.Command {
	var params ConfigParams
	return &cli.Command{
		Name:    "browse",
		Summary: "Browse articles interactively",
		Description: `Open a terminal browser over the store: the article list on the left,
the selected article rendered on the right.

Keys: j/k move, tab switches pane, / filters by fuzzy match on title,
key, and tags, p toggles publish state, r reloads, q quits.

The store stays open (and locked) while the browser runs.`,
		Usage: "inkstand browse",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("browse", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 0 {
				return cli.Validation("browse takes no arguments, got %q", args)
			}
			if !cli.IsTerminal(os.Stdin) || !cli.IsTerminal(os.Stdout) {
				return cli.Validation("browse needs a terminal; use 'inkstand list' in scripts")
			}
			// Log records would tear the alternate screen.
			quiet := slog.New(slog.DiscardHandler)
			return e.withArticles(ctx, &params, quiet, func(session *articleSession) error {
				return articleui.Run(ctx, session.articles)
			})
		},
	}
}
