// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// The goldmark instance is immutable after construction and safe to
// share; each Parse or Convert call creates its own state.
var (
	markdown     goldmark.Markdown
	markdownOnce sync.Once
)

func getMarkdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdown = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		)
	})
	return markdown
}

func parse(source []byte) ast.Node {
	return getMarkdown().Parser().Parse(text.NewReader(source))
}

// HTML converts article markdown to an HTML fragment. Raw HTML in the
// source is omitted.
func HTML(content string) (string, error) {
	var buffer bytes.Buffer
	if err := getMarkdown().Convert([]byte(content), &buffer); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buffer.String(), nil
}

// Excerpt returns the plain text of the first paragraph of content,
// whitespace-collapsed and truncated to limit display columns with a
// trailing ellipsis. A limit of zero or less means no truncation.
// Headings, code blocks, and other non-paragraph blocks are skipped.
func Excerpt(content string, limit int) string {
	source := []byte(content)
	document := parse(source)

	var paragraph ast.Node
	ast.Walk(document, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if node.Kind() == ast.KindParagraph {
			paragraph = node
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if paragraph == nil {
		return ""
	}

	var plain strings.Builder
	writePlainText(&plain, paragraph, source)
	excerpt := strings.Join(strings.Fields(plain.String()), " ")
	if limit > 0 {
		excerpt = ansi.Truncate(excerpt, limit, "…")
	}
	return excerpt
}

// writePlainText appends the visible text of node's inline children,
// dropping markup.
func writePlainText(builder *strings.Builder, node ast.Node, source []byte) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch inline := child.(type) {
		case *ast.Text:
			builder.Write(inline.Segment.Value(source))
			if inline.SoftLineBreak() || inline.HardLineBreak() {
				builder.WriteByte(' ')
			}
		case *ast.String:
			builder.Write(inline.Value)
		case *ast.AutoLink:
			builder.Write(inline.URL(source))
		case *ast.RawHTML:
			// Tags carry no visible text.
		default:
			writePlainText(builder, child, source)
		}
	}
}
