// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// wrapBreakpoints are the characters besides spaces that ansi.Wrap may
// break a long word after.
const wrapBreakpoints = " ,.;-+|/"

// minimumWidth keeps deeply nested blocks readable on narrow terminals.
const minimumWidth = 10

// Palette holds the colors terminal rendering uses, as ANSI 256-color
// codes.
type Palette struct {
	Text    lipgloss.Color
	Faint   lipgloss.Color
	Heading lipgloss.Color
	Link    lipgloss.Color
	Rule    lipgloss.Color
	Done    lipgloss.Color
}

// DefaultPalette suits a dark 256-color terminal.
var DefaultPalette = Palette{
	Text:    lipgloss.Color("252"),
	Faint:   lipgloss.Color("245"),
	Heading: lipgloss.Color("255"),
	Link:    lipgloss.Color("75"),
	Rule:    lipgloss.Color("240"),
	Done:    lipgloss.Color("114"),
}

// TerminalOptions configures Terminal.
type TerminalOptions struct {
	// Width is the wrap column. Zero means 80.
	Width int

	// Palette overrides DefaultPalette when any color is set.
	Palette Palette

	// Plain disables colors and syntax highlighting, for output that
	// is not going to a terminal.
	Plain bool
}

// Terminal renders article markdown as styled text for a terminal.
// Soft line breaks in paragraphs become spaces so hard-wrapped source
// reflows to Width. Fenced code keeps its lines and is highlighted by
// language.
func Terminal(content string, options TerminalOptions) string {
	if content == "" {
		return ""
	}
	if options.Width <= 0 {
		options.Width = 80
	}
	if options.Palette == (Palette{}) {
		options.Palette = DefaultPalette
	}

	profile := termenv.ANSI256
	if options.Plain {
		profile = termenv.Ascii
	}
	// SetColorProfile pins the profile; without it lipgloss re-detects
	// from the environment and drops colors when there is no TTY.
	styles := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(profile))
	styles.SetColorProfile(profile)

	source := []byte(content)
	writer := &terminalWriter{
		source:  source,
		palette: options.Palette,
		plain:   options.Plain,
		styles:  styles,
	}
	blocks := writer.blocks(parse(source), options.Width)
	return strings.Join(blocks, "\n\n")
}

// terminalWriter renders a goldmark AST block by block. Each block
// renders to a string already wrapped to the width it was given, and
// containers indent their children's output. Inline content is
// collected whole and wrapped once, so styles never split a line.
type terminalWriter struct {
	source  []byte
	palette Palette
	plain   bool
	styles  *lipgloss.Renderer
}

// inlineStyle is the emphasis state inherited by nested inline nodes.
type inlineStyle struct {
	bold, italic, strikethrough bool
}

func (w *terminalWriter) style() lipgloss.Style {
	return w.styles.NewStyle()
}

func (w *terminalWriter) faint(s string) string {
	return w.style().Foreground(w.palette.Faint).Render(s)
}

// blocks renders every child block of parent, skipping empty results.
func (w *terminalWriter) blocks(parent ast.Node, width int) []string {
	var rendered []string
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		if block := w.block(child, max(width, minimumWidth)); block != "" {
			rendered = append(rendered, block)
		}
	}
	return rendered
}

func (w *terminalWriter) block(node ast.Node, width int) string {
	switch block := node.(type) {
	case *ast.Heading:
		return w.heading(block, width)
	case *ast.Paragraph, *ast.TextBlock:
		return ansi.Wrap(w.inline(node), width, wrapBreakpoints)
	case *ast.FencedCodeBlock:
		return w.code(w.lines(block.Lines()), string(block.Language(w.source)))
	case *ast.CodeBlock:
		return w.code(w.lines(block.Lines()), "")
	case *ast.Blockquote:
		bar := w.style().Foreground(w.palette.Rule).Render("│") + " "
		inner := strings.Join(w.blocks(block, width-2), "\n\n")
		return indent(inner, bar, bar)
	case *ast.List:
		return w.list(block, width)
	case *ast.ThematicBreak:
		return w.style().Foreground(w.palette.Rule).Render(strings.Repeat("─", width))
	case *ast.HTMLBlock:
		return w.faint(strings.TrimSpace(stripTags(w.lines(block.Lines()))))
	case *extast.Table:
		return w.table(block, width)
	default:
		return strings.Join(w.blocks(node, width), "\n\n")
	}
}

func (w *terminalWriter) heading(heading *ast.Heading, width int) string {
	title := ansi.Strip(w.inline(heading))
	if title == "" {
		return ""
	}
	style := w.style().Bold(true).Foreground(w.palette.Text)
	if heading.Level <= 2 {
		style = style.Foreground(w.palette.Heading).Underline(heading.Level == 1)
	}
	return ansi.Wrap(style.Render(title), width, wrapBreakpoints)
}

func (w *terminalWriter) code(code, language string) string {
	code = strings.TrimRight(code, "\n")
	if w.plain {
		return code
	}
	if language != "" {
		var highlighted strings.Builder
		if err := quick.Highlight(&highlighted, code, language, "terminal256", "monokai"); err == nil {
			return strings.TrimRight(highlighted.String(), "\n")
		}
	}
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		lines[i] = w.faint(line)
	}
	return strings.Join(lines, "\n")
}

func (w *terminalWriter) list(list *ast.List, width int) string {
	number := list.Start
	separator := "\n\n"
	if list.IsTight {
		separator = "\n"
	}

	var items []string
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		bullet := "- "
		if list.IsOrdered() {
			bullet = fmt.Sprintf("%d. ", number)
			number++
		}
		continuation := strings.Repeat(" ", len(bullet))
		body := strings.Join(w.blocks(item, width-len(bullet)), separator)
		items = append(items, indent(body, bullet, continuation))
	}
	return strings.Join(items, separator)
}

func (w *terminalWriter) table(table *extast.Table, width int) string {
	var rows [][]string
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, w.inline(cell))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return ""
	}

	columns := 0
	for _, row := range rows {
		columns = max(columns, len(row))
	}
	widths := make([]int, columns)
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	// Over-wide tables give every column an equal share.
	const gap = "  "
	if total := sum(widths) + len(gap)*(columns-1); total > width {
		share := max((width-len(gap)*(columns-1))/columns, 3)
		for i := range widths {
			widths[i] = min(widths[i], share)
		}
	}

	lines := make([]string, 0, len(rows)+1)
	for index, row := range rows {
		parts := make([]string, columns)
		for i := range columns {
			var cell string
			if i < len(row) {
				cell = ansi.Truncate(row[i], widths[i], "…")
			}
			parts[i] = pad(cell, widths[i], alignment(table.Alignments, i))
		}
		line := strings.Join(parts, gap)
		if index == 0 {
			lines = append(lines, w.style().Bold(true).Render(line))
			rules := make([]string, columns)
			for i, columnWidth := range widths {
				rules[i] = strings.Repeat("─", columnWidth)
			}
			lines = append(lines, w.style().Foreground(w.palette.Rule).Render(strings.Join(rules, gap)))
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// inline renders node's inline children into one styled string.
func (w *terminalWriter) inline(node ast.Node) string {
	var builder strings.Builder
	w.inlineChildren(&builder, node, inlineStyle{})
	return builder.String()
}

func (w *terminalWriter) inlineChildren(builder *strings.Builder, node ast.Node, style inlineStyle) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		w.inlineNode(builder, child, style)
	}
}

func (w *terminalWriter) inlineNode(builder *strings.Builder, node ast.Node, style inlineStyle) {
	switch inline := node.(type) {
	case *ast.Text:
		builder.WriteString(w.text(string(inline.Segment.Value(w.source)), style))
		if inline.HardLineBreak() {
			builder.WriteByte('\n')
		} else if inline.SoftLineBreak() {
			builder.WriteByte(' ')
		}
	case *ast.String:
		builder.WriteString(w.text(string(inline.Value), style))
	case *ast.Emphasis:
		nested := style
		if inline.Level >= 2 {
			nested.bold = true
		} else {
			nested.italic = true
		}
		w.inlineChildren(builder, inline, nested)
	case *extast.Strikethrough:
		nested := style
		nested.strikethrough = true
		w.inlineChildren(builder, inline, nested)
	case *ast.CodeSpan:
		var code strings.Builder
		writePlainText(&code, inline, w.source)
		builder.WriteString(w.faint(code.String()))
	case *ast.Link:
		w.inlineChildren(builder, inline, style)
		if destination := string(inline.Destination); destination != "" {
			builder.WriteString(" " + w.faint("("+destination+")"))
		}
	case *ast.AutoLink:
		builder.WriteString(w.style().Foreground(w.palette.Link).Render(string(inline.URL(w.source))))
	case *ast.Image:
		var alt strings.Builder
		writePlainText(&alt, inline, w.source)
		builder.WriteString(w.faint("[" + alt.String() + "]"))
	case *ast.RawHTML:
		var raw strings.Builder
		for i := range inline.Segments.Len() {
			segment := inline.Segments.At(i)
			raw.Write(segment.Value(w.source))
		}
		if visible := stripTags(raw.String()); visible != "" {
			builder.WriteString(w.faint(visible))
		}
	case *extast.TaskCheckBox:
		if inline.IsChecked {
			builder.WriteString(w.style().Foreground(w.palette.Done).Render("[x]") + " ")
		} else {
			builder.WriteString(w.text("[ ] ", style))
		}
	default:
		w.inlineChildren(builder, node, style)
	}
}

func (w *terminalWriter) text(s string, style inlineStyle) string {
	return w.style().
		Foreground(w.palette.Text).
		Bold(style.bold).
		Italic(style.italic).
		Strikethrough(style.strikethrough).
		Render(s)
}

// lines concatenates the raw source of a block's line segments.
func (w *terminalWriter) lines(segments *text.Segments) string {
	var builder strings.Builder
	for i := range segments.Len() {
		segment := segments.At(i)
		builder.Write(segment.Value(w.source))
	}
	return builder.String()
}

// indent prefixes the first line of block with first and every later
// line with rest.
func indent(block, first, rest string) string {
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		if i == 0 {
			lines[i] = first + line
		} else {
			lines[i] = rest + line
		}
	}
	return strings.Join(lines, "\n")
}

func alignment(alignments []extast.Alignment, column int) extast.Alignment {
	if column < len(alignments) {
		return alignments[column]
	}
	return extast.AlignNone
}

func pad(cell string, width int, align extast.Alignment) string {
	space := max(width-lipgloss.Width(cell), 0)
	switch align {
	case extast.AlignRight:
		return strings.Repeat(" ", space) + cell
	case extast.AlignCenter:
		left := space / 2
		return strings.Repeat(" ", left) + cell + strings.Repeat(" ", space-left)
	default:
		return cell + strings.Repeat(" ", space)
	}
}

func sum(values []int) int {
	total := 0
	for _, value := range values {
		total += value
	}
	return total
}

// stripTags drops everything between '<' and '>'.
func stripTags(html string) string {
	var builder strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			builder.WriteRune(r)
		}
	}
	return builder.String()
}
