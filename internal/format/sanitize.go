// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import "strings"

// Sanitize repairs the markdown damage LLM output commonly arrives with
// before it is handed to Format: runs of 3+ asterisks collapse to **, an
// odd number of ** markers gets a closing pair, an odd number of ```
// fences gets a closing fence, and per-line surrounding whitespace is
// dropped. Lines inside a fenced code block are left untouched - their
// indentation is significant and must survive to the rendered block.
// Callers apply it to finalized responses, not to individual stream
// chunks - a chunk boundary can split a marker in half, and repairing
// halves would corrupt the reassembled text.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}

	// Close an unterminated final fence first so the walk below sees
	// balanced fences.
	if strings.Count(text, "```")%2 != 0 {
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		text += "```"
	}

	lines := strings.Split(text, "\n")
	inFence := false
	boldMarkers := 0
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			lines[i] = trimmed
			continue
		}
		if inFence {
			continue
		}
		trimmed = manyStarsRe.ReplaceAllString(trimmed, "**")
		boldMarkers += strings.Count(trimmed, "**")
		lines[i] = trimmed
	}

	out := strings.TrimSpace(strings.Join(lines, "\n"))
	if boldMarkers%2 != 0 {
		out += "**"
	}
	return out
}
