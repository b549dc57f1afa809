// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import "testing"

func TestParseInline_PlainOnly(t *testing.T) {
	runs := ParseInline("nothing special here")
	if len(runs) != 1 || runs[0].Kind != InlineText || runs[0].Text != "nothing special here" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
}

// Unknown icon names still parse; dropping them is the renderer's job.
func TestParseInline_UnknownIconSurvives(t *testing.T) {
	runs := ParseInline("Build {icon=Nope} now")
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %+v", runs)
	}
	if runs[0].Kind != InlineText || runs[0].Text != "Build " {
		t.Errorf("run 0: %+v", runs[0])
	}
	if runs[1].Kind != InlineIcon || runs[1].Name != "Nope" {
		t.Errorf("run 1: %+v", runs[1])
	}
	if runs[2].Kind != InlineText || runs[2].Text != " now" {
		t.Errorf("run 2: %+v", runs[2])
	}

	if Glyph("Nope") != "" {
		t.Errorf("unknown icon should render empty")
	}
}

func TestParseInline_MarkdownBold(t *testing.T) {
	runs := ParseInline("a **b** c **d**")
	want := []InlineRun{Text("a "), Bold("b"), Text(" c "), Bold("d")}
	assertRuns(t, runs, want)
}

func TestParseInline_CustomBold(t *testing.T) {
	runs := ParseInline("uses {bold=edge computing} heavily")
	want := []InlineRun{Text("uses "), Bold("edge computing"), Text(" heavily")}
	assertRuns(t, runs, want)
}

// Both bold syntaxes are first-class and can share a line.
func TestParseInline_MixedBoldForms(t *testing.T) {
	runs := ParseInline("**md** and {bold=legacy}")
	want := []InlineRun{Bold("md"), Text(" and "), Bold("legacy")}
	assertRuns(t, runs, want)
}

// Runs of 3+ asterisks collapse to ** before bold matching, so malformed
// emphasis still yields a clean bold run.
func TestParseInline_TripleAsterisks(t *testing.T) {
	runs := ParseInline("***x***")
	want := []InlineRun{Bold("x")}
	assertRuns(t, runs, want)
}

func TestParseInline_LinkWithIcon(t *testing.T) {
	runs := ParseInline("see [AdventureSeek](https://example.com/as) {icon=Link} for more")
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %+v", runs)
	}
	link := runs[1]
	if link.Kind != InlineLink {
		t.Fatalf("expected link run, got %+v", link)
	}
	if link.Text != "AdventureSeek" || link.URL != "https://example.com/as" || link.Name != "Link" {
		t.Errorf("unexpected link fields: %+v", link)
	}
}

// The link pass claims its icon token before the bare icon pass runs, so a
// link's icon is never split off into a standalone icon run.
func TestParseInline_LinkIconNotSplit(t *testing.T) {
	runs := ParseInline("[a](b) {icon=Link} then {icon=Zap}")
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %+v", runs)
	}
	if runs[0].Kind != InlineLink {
		t.Errorf("run 0 should be the link: %+v", runs[0])
	}
	if runs[2].Kind != InlineIcon || runs[2].Name != "Zap" {
		t.Errorf("run 2 should be the bare icon: %+v", runs[2])
	}
}

func TestParseInline_Empty(t *testing.T) {
	if runs := ParseInline(""); runs != nil {
		t.Errorf("expected nil for empty input, got %+v", runs)
	}
}

func TestGlyph_KnownIcons(t *testing.T) {
	for _, name := range []string{"Folder", "Check", "Zap", "Git", "TestTube"} {
		if Glyph(name) == "" {
			t.Errorf("expected a glyph for %s", name)
		}
		if _, ok := Lookup(name); !ok {
			t.Errorf("Lookup(%s) should succeed", name)
		}
	}
	if _, ok := Lookup("NotAnIcon"); ok {
		t.Errorf("Lookup should fail for unknown names")
	}
}

func assertRuns(t *testing.T, got, want []InlineRun) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d runs, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i].Kind != want[i].Kind || got[i].Text != want[i].Text ||
			got[i].Name != want[i].Name || got[i].URL != want[i].URL {
			t.Errorf("run %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}
