// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/inkstand/inkstand/cmd/inkstand/cli"
	"github.com/inkstand/inkstand/lib/article"
	"github.com/inkstand/inkstand/lib/render"
)

// excerptLength bounds the excerpt shown for articles with no
// introduction.
const excerptLength = 160

const dateLayout = "2006-01-02 15:04"

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

func publishState(published bool) string {
	if published {
		return "published"
	}
	return "draft"
}

// summary returns the introduction, or an excerpt of the content when
// the introduction is empty.
func summary(item article.Article) string {
	if item.Introduction != "" {
		return item.Introduction
	}
	return render.Excerpt(item.Content, excerptLength)
}

func joinFields(fields []article.Field) string {
	names := make([]string, len(fields))
	for index, field := range fields {
		names[index] = string(field)
	}
	return strings.Join(names, ", ")
}

// writeArticleTable prints one row per article. With long set, each
// row is followed by the article's summary.
func writeArticleTable(w io.Writer, articles []article.Article, long bool) error {
	if len(articles) == 0 {
		_, err := fmt.Fprintln(w, "no articles")
		return err
	}
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tSTATE\tCREATED\tTITLE\tTAGS")
	for _, item := range articles {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			item.Key,
			publishState(item.Published),
			formatDate(item.CreateDate),
			item.DisplayTitle(),
			strings.Join(item.Tags, ","),
		)
		if long {
			if text := summary(item); text != "" {
				fmt.Fprintf(tw, "\t\t\t  %s\t\n", text)
			}
		}
	}
	return tw.Flush()
}

// terminalWidth returns the wrap width for w: the terminal's width
// when w is one, else 80.
func terminalWidth(w io.Writer) (int, bool) {
	file, ok := w.(*os.File)
	if !ok || !cli.IsTerminal(file) {
		return 80, false
	}
	if width, _, err := cli.TerminalSize(file); err == nil && width > 0 {
		return width, true
	}
	return 80, true
}

// writeArticleDetail prints an article's metadata and its content
// rendered for a terminal. Colors are used only when w is a terminal
// and plain is unset.
func writeArticleDetail(w io.Writer, item article.Article, width int, plain bool) error {
	var builder strings.Builder
	fmt.Fprintf(&builder, "%s\n", item.DisplayTitle())
	fmt.Fprintf(&builder, "%s · %s · created %s", item.Key, publishState(item.Published), formatDate(item.CreateDate))
	if !item.EditDate.Equal(item.CreateDate) {
		fmt.Fprintf(&builder, " · edited %s", formatDate(item.EditDate))
	}
	builder.WriteString("\n")
	if len(item.Tags) > 0 {
		fmt.Fprintf(&builder, "tags: %s\n", strings.Join(item.Tags, ", "))
	}
	if item.Introduction != "" {
		fmt.Fprintf(&builder, "\n%s\n", item.Introduction)
	}
	if body := render.Terminal(item.Content, render.TerminalOptions{Width: width, Plain: plain}); body != "" {
		fmt.Fprintf(&builder, "\n%s\n", body)
	}
	_, err := io.WriteString(w, builder.String())
	return err
}
