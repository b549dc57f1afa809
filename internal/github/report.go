// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package github

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/robera-dev/guide-tui/internal/gateway"
	"github.com/robera-dev/guide-tui/internal/prompt"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// NarrativeUnavailable is embedded verbatim when the AI narrative call
// fails; the rest of the report still renders.
const NarrativeUnavailable = "AI analysis unavailable"

// languageBarBlocks is the width of the `█░` language bars.
const languageBarBlocks = 20

// topLanguages caps how many languages the overview panel shows.
const topLanguages = 3

var mdBoldRewriteRe = regexp.MustCompile(`\*\*(.*?)\*\*`)

// =============================================================================
// NARRATOR
// =============================================================================

// Completer produces the AI narrative paragraph. *gateway.Client
// satisfies it.
type Completer interface {
	Complete(ctx context.Context, req gateway.Request) (string, error)
}

// =============================================================================
// REPORT
// =============================================================================

// BuildReport renders the full box-drawn analysis for one repository.
// The narrative is one Complete call; every other section is derived
// deterministically from data. A nil or failing completer degrades to
// the NarrativeUnavailable placeholder.
func BuildReport(ctx context.Context, data *RepoData, ai Completer) string {
	narrative := fetchNarrative(ctx, data, ai)

	var b strings.Builder
	fmt.Fprintf(&b, "# {icon=Git} Project Analysis: %s\n", data.Name)
	b.WriteString(data.Description)
	b.WriteString("\n\n")

	b.WriteString("## {icon=Brain} AI Project Interpretation\n")
	b.WriteString("┌─────────────────────────────────────────────────────┐\n")
	b.WriteString("│ " + strings.Join(strings.Split(narrative, "\n"), "\n│ ") + "\n")
	b.WriteString("└─────────────────────────────────────────────────────┘\n\n")

	b.WriteString("## {icon=FolderTree} Project Structure\n")
	b.WriteString("┌────────────────────────────────────────────────────┐\n")
	b.WriteString(formatStructure(data.Structure))
	b.WriteString("└────────────────────────────────────────────────────┘\n\n")

	b.WriteString("## {icon=Terminal} Development Commands\n")
	b.WriteString("┌──────────────────────────────────────────────────────┐\n")
	b.WriteString(formatScripts(data.Manifest))
	b.WriteString("└──────────────────────────────────────────────────────┘\n\n")

	b.WriteString("## {icon=Sparkles} Project Overview\n")
	b.WriteString(formatOverview(data))

	return b.String()
}

// fetchNarrative runs the AI narrative call and rewrites markdown bold
// to the renderer's {bold=...} token.
func fetchNarrative(ctx context.Context, data *RepoData, ai Completer) string {
	if ai == nil {
		return NarrativeUnavailable
	}

	content, err := ai.Complete(ctx, prompt.BuildNarrative(repoContext(data)))
	if err != nil {
		return NarrativeUnavailable
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = mdBoldRewriteRe.ReplaceAllString(line, "{bold=$1}")
	}
	return strings.Join(lines, "\n")
}

// repoContext flattens the metadata into the narrative prompt input.
func repoContext(data *RepoData) string {
	deps := "None"
	if data.Manifest != nil && len(data.Manifest.Dependencies) > 0 {
		deps = strings.Join(sortedKeys(data.Manifest.Dependencies), ", ")
	}
	readme := data.Readme
	if readme == "" {
		readme = "No README"
	}

	paths := make([]string, len(data.Structure))
	for i, e := range data.Structure {
		paths[i] = e.Path
	}

	return fmt.Sprintf(
		"Project Name: %s\nDescription: %s\nMain Technologies: %s\nKey Dependencies: %s\nProject Structure: %s\nREADME Content: %s",
		data.Name, data.Description,
		strings.Join(sortedLanguages(data.Languages), ", "),
		deps, strings.Join(paths, ", "), readme,
	)
}

// =============================================================================
// STRUCTURE SECTION
// =============================================================================

// iconForPath picks the file-type icon token appended after a filename.
// Order matters: .test.ts must win over .ts.
func iconForPath(path string) string {
	switch {
	case strings.HasSuffix(path, ".test.ts"):
		return " {icon=TestTube}"
	case strings.HasSuffix(path, ".json"):
		return " {icon=Braces}"
	case strings.HasSuffix(path, ".md"):
		return " {icon=FileText}"
	case strings.HasSuffix(path, ".css"), strings.HasSuffix(path, ".scss"):
		return " {icon=Palette}"
	case strings.HasSuffix(path, ".tsx"), strings.HasSuffix(path, ".jsx"):
		return " {icon=Code2}"
	case strings.HasSuffix(path, ".ts"), strings.HasSuffix(path, ".js"):
		return " {icon=FileCode}"
	}
	return ""
}

// formatStructure renders the tree listing: directories first, then
// files, each group in path order.
func formatStructure(entries []Entry) string {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Type != sorted[j].Type {
			return sorted[i].Type == "dir"
		}
		return sorted[i].Path < sorted[j].Path
	})

	var b strings.Builder
	for _, e := range sorted {
		parts := strings.Split(e.Path, "/")
		depth := len(parts) - 1
		name := parts[len(parts)-1]

		icon := "{icon=File}"
		if e.Type == "dir" {
			icon = "{icon=Folder}"
		}

		label := runewidth.FillRight(name+iconForPath(e.Path), 30)
		fmt.Fprintf(&b, "│ %s%s %s\n", strings.Repeat("  ", depth), icon, label)
	}
	return b.String()
}

// =============================================================================
// COMMANDS SECTION
// =============================================================================

// formatScripts renders one line per manifest script, or the placeholder
// when the repository has none.
func formatScripts(m *Manifest) string {
	if m == nil || len(m.Scripts) == 0 {
		return "│ {icon=AlertCircle} No development scripts configured\n"
	}

	var lines []string
	for _, name := range sortedKeys(m.Scripts) {
		lines = append(lines, fmt.Sprintf("│ {icon=Play} %s ⎯⎯⎯▶ %s",
			runewidth.FillRight(name, 15), m.Scripts[name]))
	}
	return strings.Join(lines, "\n│\n") + "\n"
}

// =============================================================================
// OVERVIEW SECTION
// =============================================================================

// projectType classifies by conventional directory names.
func projectType(entries []Entry) string {
	if anyPathContains(entries, "pages") {
		return "{icon=Layout} Next.js Application"
	}
	if anyPathContains(entries, "components") {
		return "{icon=Boxes} React Application"
	}
	return "{icon=Box} Standard Application"
}

// languageBar renders a 20-block bar for a percentage.
func languageBar(percentage float64) string {
	filled := int(math.Round(percentage / 100 * languageBarBlocks))
	if filled < 0 {
		filled = 0
	}
	if filled > languageBarBlocks {
		filled = languageBarBlocks
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", languageBarBlocks-filled)
}

func formatOverview(data *RepoData) string {
	var b strings.Builder
	b.WriteString("┌─────────────────────────────────────────────────────┐\n")
	b.WriteString("│ {icon=Info} Project Analysis                        │\n")
	b.WriteString("├─────────────────────────────────────────────────────┤\n")
	fmt.Fprintf(&b, "│  %s\n", projectType(data.Structure))
	b.WriteString("├─────────────────────────────────────────────────────┤\n")
	b.WriteString("│ {icon=Code2} Technology Stack                       │\n")
	b.WriteString("├─────────────────────────────────────────────────────┤\n")
	b.WriteString(formatLanguages(data.Languages))
	b.WriteString("│                                                     │\n")
	b.WriteString("├─────────────────────────────────────────────────────┤\n")
	b.WriteString("│ {icon=CheckCircle} Project Status                   │\n")
	b.WriteString("├─────────────────────────────────────────────────────┤\n")
	b.WriteString(formatStatus(data))
	b.WriteString("├─────────────────────────────────────────────────────┤\n")
	b.WriteString("│ {icon=Zap} Quick Stats                              │\n")
	b.WriteString("├─────────────────────────────────────────────────────┤\n")
	b.WriteString(formatStats(data))
	b.WriteString("└─────────────────────────────────────────────────────┘\n")
	return b.String()
}

// formatLanguages renders the top languages by byte share with bars.
func formatLanguages(languages map[string]int64) string {
	var total int64
	for _, bytes := range languages {
		total += bytes
	}
	if total == 0 {
		return "│  {icon=CircleDot} No language data\n"
	}

	ranked := sortedLanguages(languages)
	if len(ranked) > topLanguages {
		ranked = ranked[:topLanguages]
	}

	var b strings.Builder
	for _, lang := range ranked {
		pct := float64(languages[lang]) / float64(total) * 100
		// Bar fill derives from the displayed one-decimal percentage.
		pct = math.Round(pct*10) / 10
		fmt.Fprintf(&b, "│  {icon=CircleDot} %s %s %.1f%%\n",
			runewidth.FillRight(lang, 15), languageBar(pct), pct)
	}
	return b.String()
}

func formatStatus(data *RepoData) string {
	testing := "{icon=X} Missing"
	if anyPathContains(data.Structure, "test") {
		testing = "{icon=Check} Implemented"
	}

	docs := "{icon=X} Missing"
	if data.Readme != "" {
		docs = "{icon=Check} Available"
	}

	packages := "{icon=X} None"
	if data.Manifest != nil && len(data.Manifest.Dependencies) > 0 {
		packages = fmt.Sprintf("{icon=Check} %d dependencies", len(data.Manifest.Dependencies))
	}

	vcs := "{icon=X} No version control"
	if anyPathContains(data.Structure, ".git") {
		vcs = "{icon=Check} Git initialized"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "│  {icon=TestTube} Testing     %s\n", testing)
	fmt.Fprintf(&b, "│  {icon=FileText} Docs        %s\n", docs)
	fmt.Fprintf(&b, "│  {icon=Package} Packages    %s\n", packages)
	fmt.Fprintf(&b, "│  {icon=Git} Version     %s\n", vcs)
	return b.String()
}

func formatStats(data *RepoData) string {
	var files, dirs int
	for _, e := range data.Structure {
		switch e.Type {
		case "file":
			files++
		case "dir":
			dirs++
		}
	}

	deps := 0
	if data.Manifest != nil {
		deps = len(data.Manifest.Dependencies)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "│  {icon=Files} Total Files: %s {icon=Folder} Directories: %d\n",
		runewidth.FillRight(fmt.Sprintf("%d", files), 8), dirs)
	fmt.Fprintf(&b, "│  {icon=Code} Languages: %s {icon=Package} Dependencies: %d\n",
		runewidth.FillRight(fmt.Sprintf("%d", len(data.Languages)), 11), deps)
	return b.String()
}

// =============================================================================
// HELPERS
// =============================================================================

func anyPathContains(entries []Entry, sub string) bool {
	for _, e := range entries {
		if strings.Contains(e.Path, sub) {
			return true
		}
	}
	return false
}

// sortedKeys returns map keys in sorted order for deterministic output.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sortedLanguages ranks languages by byte count descending, name
// ascending on ties.
func sortedLanguages(languages map[string]int64) []string {
	keys := make([]string, 0, len(languages))
	for k := range languages {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if languages[keys[i]] != languages[keys[j]] {
			return languages[keys[i]] > languages[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
