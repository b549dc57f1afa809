// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"regexp"
	"strings"
)

// alignmentCellRe matches one alignment marker cell: ---, :---, ---:, :---:.
var alignmentCellRe = regexp.MustCompile(`^:?-{3,}:?$`)

// parseTable builds a table block from a run of contiguous pipe lines.
// The first line is the header row; the second, when every cell is an
// alignment marker, sets per-column alignment (defaulting to left);
// everything else is data. The parse is permissive: ragged rows keep
// whatever cells they have, and a single-cell line is a one-column table.
func parseTable(lines []string) RenderBlock {
	headerCells := splitRow(lines[0])

	headers := make([][]InlineRun, 0, len(headerCells))
	for _, cell := range headerCells {
		headers = append(headers, ParseInline(cell))
	}

	alignments := make([]Alignment, len(headerCells))
	for i := range alignments {
		alignments[i] = AlignLeft
	}

	body := lines[1:]
	if len(body) > 0 && isAlignmentRow(body[0]) {
		for i, cell := range splitRow(body[0]) {
			if i >= len(alignments) {
				break
			}
			alignments[i] = parseAlignment(cell)
		}
		body = body[1:]
	}

	rows := make([][]string, 0, len(body))
	for _, line := range body {
		rows = append(rows, splitRow(line))
	}

	return RenderBlock{
		Kind:       BlockTable,
		Headers:    headers,
		Alignments: alignments,
		Rows:       rows,
	}
}

// splitRow splits a pipe line into trimmed cells, dropping the empty
// fragments produced by leading and trailing pipes.
func splitRow(line string) []string {
	var cells []string
	for _, piece := range strings.Split(line, "|") {
		if piece == "" {
			continue
		}
		cells = append(cells, strings.TrimSpace(piece))
	}
	return cells
}

// isAlignmentRow reports whether every cell of the line is an alignment
// marker. A line with no cells is not an alignment row.
func isAlignmentRow(line string) bool {
	cells := splitRow(line)
	if len(cells) == 0 {
		return false
	}
	for _, cell := range cells {
		if !alignmentCellRe.MatchString(cell) {
			return false
		}
	}
	return true
}

func parseAlignment(cell string) Alignment {
	switch {
	case strings.HasPrefix(cell, ":") && strings.HasSuffix(cell, ":"):
		return AlignCenter
	case strings.HasSuffix(cell, ":"):
		return AlignRight
	default:
		return AlignLeft
	}
}
