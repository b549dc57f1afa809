// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"regexp"
	"strings"
)

// =============================================================================
// PHASE 1: CODE-FENCE EXTRACTION
// =============================================================================

// codeFenceRe matches a fenced code block with an optional language tag.
// (?s) lets the body span newlines; the body match is lazy so adjacent
// fences don't merge.
var codeFenceRe = regexp.MustCompile("(?s)```(\\w+)?\\n(.*?)```")

// DefaultLanguage is used when a code fence carries no language tag.
const DefaultLanguage = "plaintext"

// span is an intermediate segment produced by phase 1: either a literal
// text span awaiting line classification, or an extracted code block.
type span struct {
	isCode   bool
	text     string // text span content
	language string // code span language
	code     string // code span body, trimmed
}

// splitCodeFences splits text into alternating text and code spans.
// Code bodies are never re-examined by phase 2, so markdown-looking
// content inside a fence stays literal.
func splitCodeFences(text string) []span {
	// Auto-close an unterminated final fence so the formatter can't lose
	// the trailing code or mis-classify its lines.
	if strings.Count(text, "```")%2 != 0 {
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		text += "```"
	}

	var spans []span
	last := 0
	for _, m := range codeFenceRe.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			spans = append(spans, span{text: text[last:m[0]]})
		}

		language := DefaultLanguage
		if m[2] >= 0 && m[3] > m[2] {
			language = text[m[2]:m[3]]
		}
		spans = append(spans, span{
			isCode:   true,
			language: language,
			code:     strings.TrimSpace(text[m[4]:m[5]]),
		})

		last = m[1]
	}
	if last < len(text) {
		spans = append(spans, span{text: text[last:]})
	}
	return spans
}

// =============================================================================
// PHASE 2: LINE CLASSIFICATION
// =============================================================================

var (
	boldHeadingRe = regexp.MustCompile(`^\*\*([^*]+)\*\*(.*)$`)
	bulletRe      = regexp.MustCompile(`^\s*[-*]\s+(.+)$`)
)

// Format transforms raw response text into an ordered block sequence.
// It is pure and total: any input yields a best-effort result, block order
// follows line order, and no input can make it fail.
func Format(text string) []RenderBlock {
	if text == "" {
		return nil
	}

	var blocks []RenderBlock
	for _, s := range splitCodeFences(text) {
		if s.isCode {
			blocks = append(blocks, RenderBlock{
				Kind:     BlockCode,
				Language: s.language,
				Code:     s.code,
			})
			continue
		}
		blocks = append(blocks, classifyLines(s.text)...)
	}
	return blocks
}

// classifyLines walks a text span line by line. First matching rule wins:
// blank, table, bold heading, bullet, heading, paragraph.
func classifyLines(text string) []RenderBlock {
	lines := strings.Split(text, "\n")

	// A trailing newline terminates the last line; it is not itself a
	// blank line.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	var blocks []RenderBlock
	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if strings.TrimSpace(line) == "" {
			blocks = append(blocks, RenderBlock{Kind: BlockSpacer})
			continue
		}

		if strings.Contains(line, "|") {
			// Consume this line and every contiguous pipe line as one
			// table; the consumed lines are not re-classified.
			end := i + 1
			for end < len(lines) && strings.Contains(lines[end], "|") {
				end++
			}
			blocks = append(blocks, parseTable(lines[i:end]))
			i = end - 1
			continue
		}

		if m := boldHeadingRe.FindStringSubmatch(line); m != nil {
			content := []InlineRun{Bold(m[1])}
			content = append(content, ParseInline(m[2])...)
			blocks = append(blocks, RenderBlock{Kind: BlockBoldHeading, Content: content})
			continue
		}

		if m := bulletRe.FindStringSubmatch(line); m != nil {
			blocks = append(blocks, RenderBlock{Kind: BlockBullet, Content: ParseInline(m[1])})
			continue
		}

		if strings.HasPrefix(line, "#") {
			level := 0
			for level < len(line) && line[level] == '#' {
				level++
			}
			rest := strings.TrimPrefix(line[level:], " ")
			blocks = append(blocks, RenderBlock{
				Kind:    BlockHeading,
				Level:   level,
				Content: ParseInline(rest),
			})
			continue
		}

		// Unreachable for blank lines (handled above), kept as a no-op
		// guard so a whitespace-only line can never emit an empty block.
		if strings.TrimSpace(line) != "" {
			blocks = append(blocks, RenderBlock{Kind: BlockParagraph, Content: ParseInline(line)})
		}
	}
	return blocks
}
