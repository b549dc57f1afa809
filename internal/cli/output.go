// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/robera-dev/guide-tui/internal/config"
	"github.com/robera-dev/guide-tui/internal/format"
	"github.com/robera-dev/guide-tui/internal/ui/components"
	"github.com/robera-dev/guide-tui/internal/ui/styles"
)

// terminalWidth returns the stdout width, or 80 when stdout is not a
// terminal (pipes, redirects).
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// renderResponse renders formatted response text for one-shot output.
// plain strips the mini-syntax instead of styling it.
func renderResponse(text string, plain bool) string {
	if plain {
		return plainText(text)
	}
	renderer := components.NewRenderer(styles.NewTheme(), terminalWidth())
	return renderer.Render(text)
}

// plainText flattens formatted response text: markup removed, icons
// dropped, code fences kept verbatim.
func plainText(text string) string {
	var lines []string
	for _, block := range format.Format(format.Sanitize(text)) {
		switch block.Kind {
		case format.BlockCode:
			lines = append(lines, block.Code)
		case format.BlockTable:
			lines = append(lines, plainTable(block)...)
		case format.BlockSpacer:
			lines = append(lines, "")
		case format.BlockBullet:
			lines = append(lines, "- "+format.PlainString(block.Content))
		default:
			lines = append(lines, format.PlainString(block.Content))
		}
	}
	return strings.Join(lines, "\n")
}

func plainTable(block format.RenderBlock) []string {
	var lines []string
	headers := make([]string, len(block.Headers))
	for i, runs := range block.Headers {
		headers[i] = format.PlainString(runs)
	}
	lines = append(lines, strings.Join(headers, " | "))
	for _, row := range block.Rows {
		lines = append(lines, strings.Join(row, " | "))
	}
	return lines
}

// loadConfig loads the config, honoring an alternate --config path.
func loadConfig(p *ArgParser) *config.Config {
	var cfg *config.Config
	var err error
	if path := p.Flag("config"); path != "" {
		cfg, err = config.LoadFromPath(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		Fatal(err)
	}
	return cfg
}
