// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import "regexp"

// =============================================================================
// INLINE GRAMMAR
// =============================================================================

var (
	// linkIconRe matches the guide's link-with-icon form:
	// [label](url) {icon=Name}. It must run before iconRe or the icon
	// token would be split off and the link form would never match.
	linkIconRe = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)\s*\{icon=(\w+)\}`)

	iconRe = regexp.MustCompile(`\{icon=(\w+)\}`)

	// mdBoldRe matches markdown bold non-greedily. Runs of 3+ asterisks
	// are collapsed to exactly 2 before this is applied.
	mdBoldRe = regexp.MustCompile(`\*\*([^*]+?)\*\*`)

	customBoldRe = regexp.MustCompile(`\{bold=([^}]+)\}`)

	manyStarsRe = regexp.MustCompile(`\*{3,}`)
)

// ParseInline splits one line of text into typed inline runs. Passes are
// applied in a fixed order (link+icon, icon, markdown bold, legacy
// {bold=...}); whatever no pass claims ends up as plain text.
func ParseInline(text string) []InlineRun {
	if text == "" {
		return nil
	}

	runs := []InlineRun{Text(text)}
	runs = applyPass(runs, linkIconRe, func(m []string) InlineRun {
		return LinkRun(m[1], m[2], m[3])
	})
	runs = applyPass(runs, iconRe, func(m []string) InlineRun {
		return IconRun(m[1])
	})
	runs = applyBoldPass(runs)
	runs = applyPass(runs, customBoldRe, func(m []string) InlineRun {
		return Bold(m[1])
	})
	return runs
}

// applyPass rewrites every plain text run, replacing regex matches with the
// run produced by build and keeping the text between matches. Non-text runs
// pass through untouched, so earlier passes can never be re-split.
func applyPass(runs []InlineRun, re *regexp.Regexp, build func(m []string) InlineRun) []InlineRun {
	var out []InlineRun
	for _, r := range runs {
		if r.Kind != InlineText {
			out = append(out, r)
			continue
		}

		text := r.Text
		last := 0
		for _, idx := range re.FindAllStringSubmatchIndex(text, -1) {
			if idx[0] > last {
				out = append(out, Text(text[last:idx[0]]))
			}

			out = append(out, build(submatches(text, idx)))
			last = idx[1]
		}
		if last < len(text) {
			out = append(out, Text(text[last:]))
		}
	}
	return out
}

// applyBoldPass handles markdown bold, normalizing runs of 3 or more
// asterisks down to exactly 2 first so malformed emphasis like ***x***
// still produces a bold run instead of stray markers.
func applyBoldPass(runs []InlineRun) []InlineRun {
	var out []InlineRun
	for _, r := range runs {
		if r.Kind != InlineText {
			out = append(out, r)
			continue
		}
		normalized := manyStarsRe.ReplaceAllString(r.Text, "**")
		out = append(out, applyPass([]InlineRun{Text(normalized)}, mdBoldRe, func(m []string) InlineRun {
			return Bold(m[1])
		})...)
	}
	return out
}

// submatches expands a FindAllStringSubmatchIndex entry into submatch
// strings, with "" for absent groups.
func submatches(text string, idx []int) []string {
	groups := make([]string, 0, len(idx)/2)
	for i := 0; i < len(idx); i += 2 {
		if idx[i] < 0 {
			groups = append(groups, "")
			continue
		}
		groups = append(groups, text[idx[i]:idx[i+1]])
	}
	return groups
}
