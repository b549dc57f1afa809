// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import "testing"

func TestFormat_Table(t *testing.T) {
	input := "| Name | Stars | Lang |\n| :--- | ---: | :---: |\n| edwood | 300 | Go |\n| hub | 12 | TS |"
	blocks := Format(input)
	if len(blocks) != 1 || blocks[0].Kind != BlockTable {
		t.Fatalf("expected single table, got %+v", blocks)
	}

	tbl := blocks[0]
	if len(tbl.Headers) != 3 {
		t.Fatalf("expected 3 headers, got %d", len(tbl.Headers))
	}
	if got := PlainString(tbl.Headers[0]); got != "Name" {
		t.Errorf("header 0: %q", got)
	}

	// Alignment array length always equals the header count.
	if len(tbl.Alignments) != 3 {
		t.Fatalf("expected 3 alignments, got %d", len(tbl.Alignments))
	}
	wantAligns := []Alignment{AlignLeft, AlignRight, AlignCenter}
	for i, a := range tbl.Alignments {
		if a != wantAligns[i] {
			t.Errorf("alignment %d: expected %s, got %s", i, wantAligns[i], a)
		}
	}

	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(tbl.Rows))
	}
	if tbl.Rows[0][0] != "edwood" || tbl.Rows[0][2] != "Go" {
		t.Errorf("row 0 cells out of order: %+v", tbl.Rows[0])
	}
	if tbl.Rows[1][1] != "12" {
		t.Errorf("row 1: %+v", tbl.Rows[1])
	}
}

// Without an alignment row every column defaults to left and the second
// line is data.
func TestFormat_TableNoAlignmentRow(t *testing.T) {
	blocks := Format("| a | b |\n| 1 | 2 |")
	tbl := blocks[0]

	if len(tbl.Rows) != 1 {
		t.Fatalf("expected 1 data row, got %+v", tbl.Rows)
	}
	for i, a := range tbl.Alignments {
		if a != AlignLeft {
			t.Errorf("alignment %d should default left, got %s", i, a)
		}
	}
}

// Ragged rows are passed through with whatever cells parsed; nothing pads,
// nothing truncates, nothing panics.
func TestFormat_TableRaggedRows(t *testing.T) {
	blocks := Format("| a | b | c |\n| 1 |\n| 1 | 2 | 3 | 4 |")
	tbl := blocks[0]

	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %+v", tbl.Rows)
	}
	if len(tbl.Rows[0]) != 1 {
		t.Errorf("short row should keep its single cell: %+v", tbl.Rows[0])
	}
	if len(tbl.Rows[1]) != 4 {
		t.Errorf("long row should keep all cells: %+v", tbl.Rows[1])
	}
}

// A lone pipe pair is a one-column table, not an error.
func TestFormat_SingleCellTable(t *testing.T) {
	blocks := Format("| only |")
	if len(blocks) != 1 || blocks[0].Kind != BlockTable {
		t.Fatalf("expected table, got %+v", blocks)
	}
	if len(blocks[0].Headers) != 1 {
		t.Errorf("expected 1 column, got %d", len(blocks[0].Headers))
	}
}

// Contiguous pipe lines are consumed once; the line after the table is
// classified normally.
func TestFormat_TableConsumesContiguousLines(t *testing.T) {
	blocks := Format("| h |\n| r1 |\n| r2 |\nafter")
	if len(blocks) != 2 {
		t.Fatalf("expected table + paragraph, got %+v", blocks)
	}
	if blocks[0].Kind != BlockTable || blocks[1].Kind != BlockParagraph {
		t.Errorf("unexpected kinds: %s, %s", blocks[0].Kind, blocks[1].Kind)
	}
	if len(blocks[0].Rows) != 2 {
		t.Errorf("expected 2 rows, got %+v", blocks[0].Rows)
	}
}
