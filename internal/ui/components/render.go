// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/robera-dev/guide-tui/internal/format"
	"github.com/robera-dev/guide-tui/internal/ui/styles"
)

// =============================================================================
// BLOCK RENDERER
// =============================================================================

// Renderer turns structured response blocks into styled terminal text.
type Renderer struct {
	theme *styles.Theme
	width int
}

// NewRenderer creates a renderer for the given theme and content width.
func NewRenderer(theme *styles.Theme, width int) *Renderer {
	if width < 20 {
		width = 20
	}
	return &Renderer{theme: theme, width: width}
}

// SetWidth updates the content width for subsequent renders.
func (r *Renderer) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	r.width = width
}

// Render sanitizes and formats raw response text, then renders every
// block. Sanitize repairs the markup damage streamed LLM output tends to
// carry (odd emphasis runs, unterminated fences).
func (r *Renderer) Render(text string) string {
	return r.RenderBlocks(format.Format(format.Sanitize(text)))
}

// RenderBlocks renders a block sequence, one line group per block.
func (r *Renderer) RenderBlocks(blocks []format.RenderBlock) string {
	var out []string
	for _, block := range blocks {
		out = append(out, r.renderBlock(block))
	}
	return strings.Join(out, "\n")
}

func (r *Renderer) renderBlock(block format.RenderBlock) string {
	switch block.Kind {
	case format.BlockCode:
		cb := NewCodeBlock(block.Language, block.Code)
		cb.SetMaxWidth(r.width)
		return cb.Render()

	case format.BlockHeading:
		return r.headingStyle(block.Level).Render(r.renderInline(block.Content))

	case format.BlockBoldHeading:
		return r.theme.BoldText.Render(r.renderInline(block.Content))

	case format.BlockBullet:
		return r.theme.BulletMark.Render("• ") + r.renderInline(block.Content)

	case format.BlockTable:
		return r.renderTable(block)

	case format.BlockSpacer:
		return ""

	default:
		return r.renderInline(block.Content)
	}
}

// headingStyle caps the visual hierarchy at three levels.
func (r *Renderer) headingStyle(level int) lipgloss.Style {
	switch {
	case level <= 1:
		return r.theme.Heading1
	case level == 2:
		return r.theme.Heading2
	default:
		return r.theme.Heading3
	}
}

// =============================================================================
// INLINE RENDERING
// =============================================================================

// inlineCodeRe matches a single-backtick span on one line.
var inlineCodeRe = regexp.MustCompile("`([^`\n]+)`")

// renderInline renders a run sequence. Unknown icon names resolve to empty
// glyphs and disappear from the output.
func (r *Renderer) renderInline(runs []format.InlineRun) string {
	var b strings.Builder
	for _, run := range runs {
		switch run.Kind {
		case format.InlineText:
			b.WriteString(renderText(run.Text))

		case format.InlineBold:
			b.WriteString(r.theme.BoldText.Render(run.Text))

		case format.InlineIcon:
			if glyph := format.Glyph(run.Name); glyph != "" {
				b.WriteString(r.theme.IconGlyph.Render(glyph))
			}

		case format.InlineLink:
			b.WriteString(r.theme.Link.Render(run.Text))
			if glyph := format.Glyph(run.Name); glyph != "" {
				b.WriteString(" " + r.theme.IconGlyph.Render(glyph))
			}
			if run.URL != "" {
				b.WriteString(" " + r.theme.SessionMeta.Render("("+run.URL+")"))
			}
		}
	}
	return b.String()
}

// renderText styles `code` spans inside a plain text run; everything else
// passes through unchanged.
func renderText(text string) string {
	if !strings.Contains(text, "`") {
		return text
	}
	var b strings.Builder
	last := 0
	for _, m := range inlineCodeRe.FindAllStringSubmatchIndex(text, -1) {
		b.WriteString(text[last:m[0]])
		b.WriteString(RenderInlineCode(text[m[2]:m[3]]))
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// =============================================================================
// TABLE RENDERING
// =============================================================================

func (r *Renderer) renderTable(block format.RenderBlock) string {
	headers := make([]string, len(block.Headers))
	for i, runs := range block.Headers {
		headers[i] = format.PlainString(runs)
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range block.Rows {
		for i, cell := range row {
			if i < len(widths) && runewidth.StringWidth(cell) > widths[i] {
				widths[i] = runewidth.StringWidth(cell)
			}
		}
	}

	align := func(i int) format.Alignment {
		if i < len(block.Alignments) {
			return block.Alignments[i]
		}
		return format.AlignLeft
	}

	var lines []string

	headerCells := make([]string, len(headers))
	for i, h := range headers {
		headerCells[i] = r.theme.TableHeader.Render(padCell(h, widths[i], align(i)))
	}
	lines = append(lines, strings.Join(headerCells, "  "))

	ruleCells := make([]string, len(widths))
	for i, w := range widths {
		ruleCells[i] = strings.Repeat("─", w)
	}
	lines = append(lines, r.theme.TableRule.Render(strings.Join(ruleCells, "──")))

	for _, row := range block.Rows {
		cells := make([]string, len(widths))
		for i := range widths {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			cells[i] = r.theme.TableCell.Render(padCell(cell, widths[i], align(i)))
		}
		lines = append(lines, strings.Join(cells, "  "))
	}

	return strings.Join(lines, "\n")
}

// padCell pads a cell to width, honoring the column alignment. Widths are
// display widths so CJK content lines up.
func padCell(s string, width int, align format.Alignment) string {
	switch align {
	case format.AlignRight:
		return runewidth.FillLeft(s, width)
	case format.AlignCenter:
		gap := width - runewidth.StringWidth(s)
		if gap <= 0 {
			return s
		}
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return runewidth.FillRight(s, width)
	}
}
