// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// README RENDERER
// =============================================================================

// RenderMarkdown renders full markdown (README content) for terminal
// display using glamour. Falls back to the raw text when rendering fails
// so a broken document still shows something.
func RenderMarkdown(markdown string, width int, dark bool) string {
	if width < 20 {
		width = 20
	}

	style := "light"
	if dark {
		style = "dark"
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return markdown
	}

	out, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(out, "\n")
}
