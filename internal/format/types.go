// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

// =============================================================================
// RENDER BLOCKS
// =============================================================================

// BlockKind identifies the variant of a RenderBlock.
type BlockKind int

const (
	// BlockCode is a fenced code block with an optional language tag.
	BlockCode BlockKind = iota

	// BlockHeading is a markdown heading (# through ###### - the literal
	// level is stored, styling caps at 3).
	BlockHeading

	// BlockBoldHeading is a line of the form **text** optionally followed
	// by more text on the same line.
	BlockBoldHeading

	// BlockBullet is a single bullet item (* or - prefix).
	BlockBullet

	// BlockTable is a pipe table.
	BlockTable

	// BlockParagraph is a plain text line.
	BlockParagraph

	// BlockSpacer represents a blank line.
	BlockSpacer
)

// String returns a short name for the block kind, used in tests and logs.
func (k BlockKind) String() string {
	switch k {
	case BlockCode:
		return "code"
	case BlockHeading:
		return "heading"
	case BlockBoldHeading:
		return "bold-heading"
	case BlockBullet:
		return "bullet"
	case BlockTable:
		return "table"
	case BlockParagraph:
		return "paragraph"
	case BlockSpacer:
		return "spacer"
	default:
		return "unknown"
	}
}

// Alignment is a table column alignment.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// RenderBlock is one structured unit of displayable content. Kind selects
// the variant; only the fields of that variant are populated.
type RenderBlock struct {
	Kind BlockKind

	// BlockCode
	Language string
	Code     string

	// BlockHeading
	Level int

	// BlockHeading, BlockBoldHeading, BlockBullet, BlockParagraph
	Content []InlineRun

	// BlockTable
	Headers    [][]InlineRun
	Alignments []Alignment
	Rows       [][]string
}

// =============================================================================
// INLINE RUNS
// =============================================================================

// InlineKind identifies the variant of an InlineRun.
type InlineKind int

const (
	// InlineText is unstyled text.
	InlineText InlineKind = iota

	// InlineBold is bold text, produced by **text** or the legacy
	// {bold=text} form.
	InlineBold

	// InlineIcon is an {icon=Name} token. The name is recorded verbatim;
	// unknown names resolve to empty output at render time, not here.
	InlineIcon

	// InlineLink is a [label](url) {icon=Name} link.
	InlineLink
)

// InlineRun is one typed fragment of inline content within a block.
type InlineRun struct {
	Kind InlineKind

	// Text is the visible text: plain content, bold content, or link label.
	Text string

	// Name is the icon identifier for InlineIcon, or the optional link icon
	// for InlineLink.
	Name string

	// URL is the link target for InlineLink.
	URL string
}

// Text creates a plain text run.
func Text(s string) InlineRun { return InlineRun{Kind: InlineText, Text: s} }

// Bold creates a bold run.
func Bold(s string) InlineRun { return InlineRun{Kind: InlineBold, Text: s} }

// IconRun creates an icon run for the given name.
func IconRun(name string) InlineRun { return InlineRun{Kind: InlineIcon, Name: name} }

// LinkRun creates a link run with an optional trailing icon name.
func LinkRun(label, url, icon string) InlineRun {
	return InlineRun{Kind: InlineLink, Text: label, URL: url, Name: icon}
}

// PlainString flattens a run sequence back to unstyled text. Icon runs
// contribute nothing; links contribute their label.
func PlainString(runs []InlineRun) string {
	var out []byte
	for _, r := range runs {
		switch r.Kind {
		case InlineText, InlineBold, InlineLink:
			out = append(out, r.Text...)
		}
	}
	return string(out)
}
