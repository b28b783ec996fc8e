// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/inkstand/inkstand/cmd/inkstand/cli"
	"github.com/inkstand/inkstand/lib/article"
	"github.com/inkstand/inkstand/lib/articledef"
)

type importParams struct {
	ConfigParams
	cli.JSONOutput
}

// importResult reports what happened to one definition file.
type importResult struct {
	File    string          `json:"file"`
	Key     string          `json:"key"`
	Action  string          `json:"action"`
	Changed []article.Field `json:"changed,omitempty"`
}

func importCommand(e *env) *cli.Command {
	var params importParams
	return &cli.Command{
		Name:    "import",
		Summary: "Create or update articles from JSONC definition files",
		Description: `Apply JSONC article definitions. A definition without a "key" creates
a new draft; one with a key edits that article, and any createDate it
carries must match the stored one.

All files are parsed and validated before any is applied. Applying
stops at the first failure; earlier files stay applied.`,
		Usage: "inkstand import FILE...",
		Examples: []cli.Example{
			{Description: "Import every definition in a directory", Command: "inkstand import drafts/*.jsonc"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("import", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) == 0 {
				return cli.Validation("usage: inkstand import FILE...")
			}
			definitions := make([]*articledef.Definition, len(args))
			for index, path := range args {
				definition, err := articledef.ReadFile(path)
				if err != nil {
					return cli.Validation("%w", err)
				}
				definitions[index] = definition
			}

			return e.withArticles(ctx, &params.ConfigParams, logger, func(session *articleSession) error {
				results := make([]importResult, 0, len(definitions))
				for index, definition := range definitions {
					result, err := applyDefinition(ctx, session.articles, definition)
					if err != nil {
						return fmt.Errorf("%s: %w", args[index], err)
					}
					result.File = args[index]
					results = append(results, result)
				}
				if done, err := params.EmitJSON(e.out, results); done {
					return err
				}
				for _, result := range results {
					fmt.Fprintf(e.out, "%s\t%s\t%s\n", result.Key, result.Action, result.File)
				}
				return nil
			})
		},
	}
}

func applyDefinition(ctx context.Context, service *article.Service, definition *articledef.Definition) (importResult, error) {
	if !definition.IsEdit() {
		created, err := service.Create(ctx, definition.CreateInput())
		if err != nil {
			return importResult{}, err
		}
		return importResult{Key: created.Key, Action: "created"}, nil
	}

	edited, err := service.Edit(ctx, definition.EditInput())
	if err != nil {
		return importResult{}, err
	}
	action := "updated"
	if edited.NoOp {
		action = "unchanged"
	}
	return importResult{Key: definition.Key, Action: action, Changed: edited.Changed}, nil
}

type exportParams struct {
	ConfigParams
	Published bool     `json:"published" flag:"published" desc:"only published articles"`
	Keys      []string `json:"keys" flag:"key" desc:"only this article (repeatable)"`
	Output    string   `json:"output" flag:"output,o" desc:"write to this file instead of stdout"`
}

func exportCommand(e *env) *cli.Command {
	var params exportParams
	return &cli.Command{
		Name:    "export",
		Summary: "Write full article records as JSON",
		Description: `Write articles as a JSON array of full records: key, fields, publish
state, dates, and history. The output is the --json form of "list".`,
		Usage: "inkstand export [flags]",
		Examples: []cli.Example{
			{Description: "Export everything to a file", Command: "inkstand export -o articles.json"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("export", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 0 {
				return cli.Validation("export takes no arguments, got %q", args)
			}
			for _, key := range params.Keys {
				if !article.ValidKey(key) {
					return cli.Validation("%q is not an article key", key)
				}
			}
			return e.withArticles(ctx, &params.ConfigParams, logger, func(session *articleSession) error {
				articles, err := exportSelection(ctx, session.articles, params)
				if err != nil {
					return err
				}

				if params.Output == "" {
					return cli.WriteJSON(e.out, articles)
				}
				file, err := os.Create(params.Output)
				if err != nil {
					return err
				}
				if err := cli.WriteJSON(file, articles); err != nil {
					file.Close()
					return fmt.Errorf("writing %s: %w", params.Output, err)
				}
				if err := file.Close(); err != nil {
					return fmt.Errorf("writing %s: %w", params.Output, err)
				}
				logger.Info("articles exported", "count", len(articles), "output", params.Output)
				return nil
			})
		},
	}
}

func exportSelection(ctx context.Context, service *article.Service, params exportParams) ([]article.Article, error) {
	var articles []article.Article
	var err error
	if params.Published {
		articles, err = service.ListPublished(ctx)
	} else {
		articles, err = service.List(ctx)
	}
	if err != nil || len(params.Keys) == 0 {
		return articles, err
	}

	wanted := make(map[string]bool, len(params.Keys))
	for _, key := range params.Keys {
		wanted[key] = true
	}
	selected := make([]article.Article, 0, len(params.Keys))
	for _, item := range articles {
		if wanted[item.Key] {
			selected = append(selected, item)
			delete(wanted, item.Key)
		}
	}
	for key := range wanted {
		if params.Published {
			return nil, cli.NotFound("article %s does not exist or is not published", key)
		}
		return nil, cli.NotFound("article %s does not exist", key)
	}
	return selected, nil
}
