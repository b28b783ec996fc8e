// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/inkstand/inkstand/cmd/inkstand/cli"
	"github.com/inkstand/inkstand/lib/article"
	"github.com/inkstand/inkstand/lib/articledef"
	"github.com/inkstand/inkstand/lib/render"
)

// contentParams are the article fields settable from flags.
type contentParams struct {
	Title        string   `json:"title" flag:"title,t" desc:"article title"`
	Content      string   `json:"content" flag:"content" desc:"markdown content"`
	ContentFile  string   `json:"content_file" flag:"content-file" desc:"read markdown content from this file (- for stdin)"`
	Introduction string   `json:"introduction" flag:"introduction" desc:"short introduction shown in listings"`
	Tags         []string `json:"tags" flag:"tag" desc:"tag (repeatable)"`
}

// content returns the content from --content or --content-file.
func (p *contentParams) content() (string, error) {
	if p.ContentFile == "" {
		return p.Content, nil
	}
	if p.Content != "" {
		return "", cli.Validation("--content and --content-file are mutually exclusive")
	}
	var data []byte
	var err error
	if p.ContentFile == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(p.ContentFile)
	}
	if err != nil {
		return "", fmt.Errorf("reading content: %w", err)
	}
	return string(data), nil
}

// requireKey checks the single positional KEY argument.
func requireKey(args []string, usage string) (string, error) {
	if len(args) != 1 {
		return "", cli.Validation("usage: %s", usage)
	}
	if !article.ValidKey(args[0]) {
		return "", cli.Validation("%q is not an article key (%d lowercase letters or digits)", args[0], article.KeyLength)
	}
	return args[0], nil
}

// lookup returns the article with key or a not-found error.
func lookup(ctx context.Context, service *article.Service, key string) (article.Article, error) {
	match, err := service.Get(ctx, article.Filter{"key": key})
	if err != nil {
		return article.Article{}, err
	}
	if match.Single == nil {
		return article.Article{}, cli.NotFound("article %s does not exist", key)
	}
	return *match.Single, nil
}

type createParams struct {
	ConfigParams
	cli.JSONOutput
	contentParams
	File string `json:"file" flag:"file,f" desc:"read the article from a JSONC definition file"`
}

func createCommand(e *env) *cli.Command {
	var params createParams
	return &cli.Command{
		Name:    "create",
		Summary: "Create a draft article",
		Description: `Create a new article and print its key.

New articles are drafts. The key is six random lowercase letters and
digits, unique in the store. Fields come from flags or from a JSONC
definition file (--file); a definition with a "key" is an edit and is
rejected here.`,
		Usage: "inkstand create [flags]",
		Examples: []cli.Example{
			{
				Description: "Create from flags",
				Command:     "inkstand create --title 'Hello' --content '# Hi' --tag intro",
			},
			{
				Description: "Create from a definition file",
				Command:     "inkstand create --file hello.jsonc",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("create", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 0 {
				return cli.Validation("create takes no arguments, got %q", args)
			}
			input, err := params.input()
			if err != nil {
				return err
			}
			return e.withArticles(ctx, &params.ConfigParams, logger, func(session *articleSession) error {
				created, err := session.articles.Create(ctx, input)
				if err != nil {
					return err
				}
				if done, err := params.EmitJSON(e.out, created); done {
					return err
				}
				_, err = fmt.Fprintf(e.out, "%s\n", created.Key)
				return err
			})
		},
	}
}

func (p *createParams) input() (article.CreateInput, error) {
	if p.File != "" {
		if p.Title != "" || p.Content != "" || p.ContentFile != "" || p.Introduction != "" || len(p.Tags) > 0 {
			return article.CreateInput{}, cli.Validation("--file cannot be combined with field flags")
		}
		definition, err := articledef.ReadFile(p.File)
		if err != nil {
			return article.CreateInput{}, cli.Validation("%w", err)
		}
		if definition.IsEdit() {
			return article.CreateInput{}, cli.Validation("%s names key %s; use 'inkstand edit --file' or 'inkstand import'", p.File, definition.Key)
		}
		return definition.CreateInput(), nil
	}
	content, err := p.content()
	if err != nil {
		return article.CreateInput{}, err
	}
	return article.CreateInput{Fields: article.Fields{
		Title:        p.Title,
		Content:      content,
		Introduction: p.Introduction,
		Tags:         p.Tags,
	}}, nil
}

type editParams struct {
	ConfigParams
	cli.JSONOutput
	contentParams
	ClearTags bool   `json:"clear_tags" flag:"clear-tags" desc:"remove all tags (combine with --tag to replace them)"`
	File      string `json:"file" flag:"file,f" desc:"read the article from a JSONC definition file with a key"`
}

// editOutput is the --json form of an edit result.
type editOutput struct {
	Article article.Article `json:"article"`
	Changed []article.Field `json:"changed"`
	NoOp    bool            `json:"noOp"`
}

func editCommand(e *env) *cli.Command {
	var params editParams
	var flagSet *pflag.FlagSet
	return &cli.Command{
		Name:    "edit",
		Summary: "Edit an article",
		Description: `Edit an article's title, content, introduction, or tags.

Only the fields given as flags change; --tag replaces the whole tag
list. When the title, content, or tags change, the previous version is
kept in the article's history. An edit that changes none of them is a
no-op and writes nothing.`,
		Usage: "inkstand edit KEY [flags] | inkstand edit --file FILE",
		Examples: []cli.Example{
			{
				Description: "Retitle an article",
				Command:     "inkstand edit k3x9ab --title 'Better title'",
			},
			{
				Description: "Replace content from a file",
				Command:     "inkstand edit k3x9ab --content-file post.md",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet = cli.FlagsFromParams("edit", &params)
			return flagSet
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			var definition *articledef.Definition
			var key string
			if params.File != "" {
				if len(args) != 0 {
					return cli.Validation("--file takes the key from the definition; got arguments %q", args)
				}
				var err error
				definition, err = articledef.ReadFile(params.File)
				if err != nil {
					return cli.Validation("%w", err)
				}
				if !definition.IsEdit() {
					return cli.Validation("%s has no key; use 'inkstand create --file'", params.File)
				}
				key = definition.Key
			} else {
				var err error
				if key, err = requireKey(args, "inkstand edit KEY [flags]"); err != nil {
					return err
				}
			}

			return e.withArticles(ctx, &params.ConfigParams, logger, func(session *articleSession) error {
				var input article.EditInput
				if definition != nil {
					input = definition.EditInput()
				} else {
					current, err := lookup(ctx, session.articles, key)
					if err != nil {
						return err
					}
					if input, err = params.overlay(current, flagSet); err != nil {
						return err
					}
				}

				result, err := session.articles.Edit(ctx, input)
				if err != nil {
					return err
				}
				if done, err := params.EmitJSON(e.out, editOutput{Article: result.Article, Changed: result.Changed, NoOp: result.NoOp}); done {
					return err
				}
				if result.NoOp {
					_, err = fmt.Fprintf(e.out, "%s unchanged\n", key)
					return err
				}
				if len(result.Changed) == 0 {
					_, err = fmt.Fprintf(e.out, "%s updated\n", key)
					return err
				}
				_, err = fmt.Fprintf(e.out, "%s updated: %s\n", key, joinFields(result.Changed))
				return err
			})
		},
	}
}

// overlay applies the flags the user set to the current fields.
func (p *editParams) overlay(current article.Article, flagSet *pflag.FlagSet) (article.EditInput, error) {
	input := article.EditInput{Key: current.Key, Fields: current.Fields()}
	changed := func(name string) bool {
		return flagSet != nil && flagSet.Changed(name)
	}

	if changed("title") {
		input.Title = p.Title
	}
	if changed("content") || changed("content-file") {
		content, err := p.content()
		if err != nil {
			return article.EditInput{}, err
		}
		input.Content = content
	}
	if changed("introduction") {
		input.Introduction = p.Introduction
	}
	if p.ClearTags {
		input.Tags = []string{}
	}
	if changed("tag") {
		input.Tags = p.Tags
	}
	return input, nil
}

type keyParams struct {
	ConfigParams
	cli.JSONOutput
}

func deleteCommand(e *env) *cli.Command {
	var params keyParams
	return &cli.Command{
		Name:    "delete",
		Summary: "Delete an article",
		Description: `Delete an article and its history. This cannot be undone except
by restoring a backup.`,
		Usage: "inkstand delete KEY",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("delete", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			key, err := requireKey(args, "inkstand delete KEY")
			if err != nil {
				return err
			}
			return e.withArticles(ctx, &params.ConfigParams, logger, func(session *articleSession) error {
				if err := session.articles.Delete(ctx, key); err != nil {
					return err
				}
				if done, err := params.EmitJSON(e.out, map[string]any{"key": key, "deleted": true}); done {
					return err
				}
				_, err := fmt.Fprintf(e.out, "%s deleted\n", key)
				return err
			})
		},
	}
}

func existsCommand(e *env) *cli.Command {
	var params keyParams
	return &cli.Command{
		Name:    "exists",
		Summary: "Check whether an article key is in use",
		Description: `Print "true" and exit 0 when an article has KEY, else print
"false" and exit 1.`,
		Usage: "inkstand exists KEY",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("exists", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			key, err := requireKey(args, "inkstand exists KEY")
			if err != nil {
				return err
			}
			return e.withArticles(ctx, &params.ConfigParams, logger, func(session *articleSession) error {
				exists, err := session.articles.Exists(ctx, key)
				if err != nil {
					return err
				}
				if done, err := params.EmitJSON(e.out, map[string]any{"key": key, "exists": exists}); done {
					if err == nil && !exists {
						err = &cli.ExitError{Code: 1}
					}
					return err
				}
				fmt.Fprintf(e.out, "%t\n", exists)
				if !exists {
					return &cli.ExitError{Code: 1}
				}
				return nil
			})
		},
	}
}

type listParams struct {
	ConfigParams
	cli.JSONOutput
	Published bool   `json:"published" flag:"published" desc:"only published articles"`
	Tag       string `json:"tag" flag:"tag" desc:"only articles with this tag"`
	Long      bool   `json:"long" flag:"long,l" desc:"show each article's introduction or an excerpt"`
}

func listCommand(e *env) *cli.Command {
	var params listParams
	return &cli.Command{
		Name:    "list",
		Summary: "List articles, newest first",
		Usage:   "inkstand list [flags]",
		Examples: []cli.Example{
			{Description: "Everything", Command: "inkstand list"},
			{Description: "Published articles tagged go, with excerpts", Command: "inkstand list --published --tag go --long"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("list", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 0 {
				return cli.Validation("list takes no arguments, got %q", args)
			}
			return e.withArticles(ctx, &params.ConfigParams, logger, func(session *articleSession) error {
				var articles []article.Article
				var err error
				switch {
				case params.Tag != "":
					filter := article.Filter{"tags": params.Tag}
					if params.Published {
						filter["published"] = true
					}
					var match article.Match
					match, err = session.articles.Get(ctx, filter)
					articles = match.Articles
				case params.Published:
					articles, err = session.articles.ListPublished(ctx)
				default:
					articles, err = session.articles.List(ctx)
				}
				if err != nil {
					return err
				}
				if done, err := params.EmitJSON(e.out, articles); done {
					return err
				}
				return writeArticleTable(e.out, articles, params.Long)
			})
		},
	}
}

type showParams struct {
	ConfigParams
	cli.JSONOutput
	Width int  `json:"width" flag:"width" desc:"wrap width (default: terminal width, else 80)"`
	Plain bool `json:"plain" flag:"plain" desc:"no colors or highlighting"`
}

func showCommand(e *env) *cli.Command {
	var params showParams
	return &cli.Command{
		Name:    "show",
		Summary: "Show an article rendered for the terminal",
		Description: `Print an article's metadata and its markdown content rendered for
the terminal: styled headings and emphasis, highlighted code blocks,
aligned tables. Colors are used only when output is a terminal.`,
		Usage: "inkstand show KEY [flags]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("show", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			key, err := requireKey(args, "inkstand show KEY")
			if err != nil {
				return err
			}
			return e.withArticles(ctx, &params.ConfigParams, logger, func(session *articleSession) error {
				item, err := lookup(ctx, session.articles, key)
				if err != nil {
					return err
				}
				if done, err := params.EmitJSON(e.out, item); done {
					return err
				}
				width, terminal := terminalWidth(e.out)
				if params.Width > 0 {
					width = params.Width
				}
				return writeArticleDetail(e.out, item, width, params.Plain || !terminal)
			})
		},
	}
}

type getParams struct {
	ConfigParams
	cli.JSONOutput
	Fields []string `json:"fields" flag:"field" desc:"name=value filter on a top-level field (repeatable)"`
	Long   bool     `json:"long" flag:"long,l" desc:"show each article's introduction or an excerpt"`
}

// getOutput is the --json form of a get result.
type getOutput struct {
	Articles []article.Article `json:"articles"`
	Single   *article.Article  `json:"single,omitempty"`
}

func getCommand(e *env) *cli.Command {
	var params getParams
	return &cli.Command{
		Name:    "get",
		Summary: "Find articles by field values",
		Description: `Print the articles whose fields equal every --field filter. A filter
on tags matches articles carrying that tag. "true" and "false" match
boolean fields such as published. With no filters every article
matches.`,
		Usage: "inkstand get [--field name=value]... [flags]",
		Examples: []cli.Example{
			{Description: "Look up by title", Command: "inkstand get --field 'title=Release notes'"},
			{Description: "Published articles tagged go", Command: "inkstand get --field tags=go --field published=true"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("get", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 0 {
				return cli.Validation("get takes filters as --field name=value, got arguments %q", args)
			}
			filter, err := parseFilter(params.Fields)
			if err != nil {
				return err
			}
			return e.withArticles(ctx, &params.ConfigParams, logger, func(session *articleSession) error {
				match, err := session.articles.Get(ctx, filter)
				if err != nil {
					return err
				}
				if done, err := params.EmitJSON(e.out, getOutput{Articles: match.Articles, Single: match.Single}); done {
					return err
				}
				return writeArticleTable(e.out, match.Articles, params.Long)
			})
		},
	}
}

// parseFilter turns name=value pairs into a filter. "true" and "false"
// become booleans.
func parseFilter(pairs []string) (article.Filter, error) {
	filter := article.Filter{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, cli.Validation("--field %q is not name=value", pair)
		}
		if _, repeated := filter[name]; repeated {
			return nil, cli.Validation("--field %s given twice", name)
		}
		switch value {
		case "true":
			filter[name] = true
		case "false":
			filter[name] = false
		default:
			filter[name] = value
		}
	}
	return filter, nil
}

func publishCommand(e *env) *cli.Command {
	var params keyParams
	return &cli.Command{
		Name:        "publish",
		Summary:     "Toggle an article between draft and published",
		Description: `Flip an article's publish state and print the new state.`,
		Usage:       "inkstand publish KEY",
		Flags:       func() *pflag.FlagSet { return cli.FlagsFromParams("publish", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			key, err := requireKey(args, "inkstand publish KEY")
			if err != nil {
				return err
			}
			return e.withArticles(ctx, &params.ConfigParams, logger, func(session *articleSession) error {
				published, err := session.articles.TogglePublish(ctx, key)
				if err != nil {
					return err
				}
				if done, err := params.EmitJSON(e.out, map[string]any{"key": key, "published": published}); done {
					return err
				}
				_, err = fmt.Fprintf(e.out, "%s %s\n", key, publishState(published))
				return err
			})
		},
	}
}

func statusCommand(e *env) *cli.Command {
	var params keyParams
	return &cli.Command{
		Name:    "status",
		Summary: "Print whether an article is published",
		Usage:   "inkstand status KEY",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("status", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			key, err := requireKey(args, "inkstand status KEY")
			if err != nil {
				return err
			}
			return e.withArticles(ctx, &params.ConfigParams, logger, func(session *articleSession) error {
				published, err := session.articles.IsPublished(ctx, key)
				if err != nil {
					return err
				}
				if done, err := params.EmitJSON(e.out, map[string]any{"key": key, "published": published}); done {
					return err
				}
				_, err = fmt.Fprintln(e.out, publishState(published))
				return err
			})
		},
	}
}

func statsCommand(e *env) *cli.Command {
	var params keyParams
	return &cli.Command{
		Name:    "stats",
		Summary: "Count articles and distinct tags",
		Usage:   "inkstand stats",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("stats", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 0 {
				return cli.Validation("stats takes no arguments, got %q", args)
			}
			return e.withArticles(ctx, &params.ConfigParams, logger, func(session *articleSession) error {
				stats, err := session.articles.Statistics(ctx)
				if err != nil {
					return err
				}
				if done, err := params.EmitJSON(e.out, stats); done {
					return err
				}
				_, err = fmt.Fprintf(e.out, "articles: %d\ntags:     %d\n", stats.ArticleCount, stats.DistinctTagCount)
				return err
			})
		},
	}
}

func historyCommand(e *env) *cli.Command {
	var params keyParams
	return &cli.Command{
		Name:    "history",
		Summary: "List an article's previous revisions",
		Description: `Print the revisions kept for an article, most recent first. Each
revision is the article as it was before an edit, with the fields that
edit changed.`,
		Usage: "inkstand history KEY",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("history", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			key, err := requireKey(args, "inkstand history KEY")
			if err != nil {
				return err
			}
			return e.withArticles(ctx, &params.ConfigParams, logger, func(session *articleSession) error {
				item, err := lookup(ctx, session.articles, key)
				if err != nil {
					return err
				}
				if done, err := params.EmitJSON(e.out, item.HistoryContent); done {
					return err
				}
				if len(item.HistoryContent) == 0 {
					_, err := fmt.Fprintf(e.out, "%s has no revisions\n", key)
					return err
				}
				for index, revision := range item.HistoryContent {
					title := article.Article{Title: revision.Title}.DisplayTitle()
					fmt.Fprintf(e.out, "%d  %s  changed %s\n   %s", index+1, formatDate(revision.EditDate), joinFields(revision.Changed), title)
					if len(revision.Tags) > 0 {
						fmt.Fprintf(e.out, "  [%s]", strings.Join(revision.Tags, ", "))
					}
					fmt.Fprintln(e.out)
				}
				return nil
			})
		},
	}
}

type renderParams struct {
	ConfigParams
	Output string `json:"output" flag:"output,o" desc:"write HTML to this file instead of stdout"`
}

func renderCommand(e *env) *cli.Command {
	var params renderParams
	return &cli.Command{
		Name:    "render",
		Summary: "Render an article's content to HTML",
		Description: `Convert an article's markdown content to an HTML fragment
(GitHub-flavored: tables, task lists, strikethrough, autolinks; headings
get id attributes).`,
		Usage: "inkstand render KEY [--output FILE]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("render", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			key, err := requireKey(args, "inkstand render KEY")
			if err != nil {
				return err
			}
			return e.withArticles(ctx, &params.ConfigParams, logger, func(session *articleSession) error {
				item, err := lookup(ctx, session.articles, key)
				if err != nil {
					return err
				}
				html, err := render.HTML(item.Content)
				if err != nil {
					return err
				}
				if params.Output == "" {
					_, err = io.WriteString(e.out, html)
					return err
				}
				if err := os.WriteFile(params.Output, []byte(html), 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", params.Output, err)
				}
				logger.Info("article rendered", "key", key, "output", params.Output)
				return nil
			})
		},
	}
}
