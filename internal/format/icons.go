// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

// =============================================================================
// ICON IDENTIFIERS
// =============================================================================

// Icon is one of the closed set of icon identifiers the guide's prompts
// teach the model to emit. The parser records names verbatim; resolution
// happens at the render boundary via Lookup, and unknown names simply
// render as nothing.
type Icon int

const (
	IconUnknown Icon = iota
	IconAlertCircle
	IconBox
	IconBoxes
	IconBraces
	IconBrain
	IconCheck
	IconCheckCircle
	IconCircleDot
	IconCode
	IconCode2
	IconFile
	IconFileCode
	IconFileText
	IconFiles
	IconFolder
	IconFolderTree
	IconGit
	IconInfo
	IconLayout
	IconLink
	IconPackage
	IconPalette
	IconPlay
	IconSparkles
	IconTarget
	IconTerminal
	IconTestTube
	IconX
	IconZap
)

// iconNames maps the wire names (as emitted in {icon=Name} tokens) to
// identifiers.
var iconNames = map[string]Icon{
	"AlertCircle": IconAlertCircle,
	"Box":         IconBox,
	"Boxes":       IconBoxes,
	"Braces":      IconBraces,
	"Brain":       IconBrain,
	"Check":       IconCheck,
	"CheckCircle": IconCheckCircle,
	"CircleDot":   IconCircleDot,
	"Code":        IconCode,
	"Code2":       IconCode2,
	"File":        IconFile,
	"FileCode":    IconFileCode,
	"FileText":    IconFileText,
	"Files":       IconFiles,
	"Folder":      IconFolder,
	"FolderTree":  IconFolderTree,
	"Git":         IconGit,
	"Info":        IconInfo,
	"Layout":      IconLayout,
	"Link":        IconLink,
	"Package":     IconPackage,
	"Palette":     IconPalette,
	"Play":        IconPlay,
	"Sparkles":    IconSparkles,
	"Target":      IconTarget,
	"Terminal":    IconTerminal,
	"TestTube":    IconTestTube,
	"X":           IconX,
	"Zap":         IconZap,
}

// iconGlyphs maps identifiers to their terminal glyphs.
var iconGlyphs = map[Icon]string{
	IconAlertCircle: "⚠",
	IconBox:         "□",
	IconBoxes:       "▣",
	IconBraces:      "{}",
	IconBrain:       "✦",
	IconCheck:       "✓",
	IconCheckCircle: "✔",
	IconCircleDot:   "●",
	IconCode:        "‹›",
	IconCode2:       "</>",
	IconFile:        "·",
	IconFileCode:    "∙",
	IconFileText:    "≡",
	IconFiles:       "⧉",
	IconFolder:      "▸",
	IconFolderTree:  "⌥",
	IconGit:         "⎇",
	IconInfo:        "ℹ",
	IconLayout:      "▦",
	IconLink:        "↗",
	IconPackage:     "⬡",
	IconPalette:     "◐",
	IconPlay:        "▶",
	IconSparkles:    "✨",
	IconTarget:      "◎",
	IconTerminal:    "❯",
	IconTestTube:    "⚗",
	IconX:           "✗",
	IconZap:         "⚡",
}

// Lookup resolves a wire name to an icon identifier. The second return is
// false for names outside the known set.
func Lookup(name string) (Icon, bool) {
	icon, ok := iconNames[name]
	return icon, ok
}

// Glyph returns the terminal glyph for an icon name, or "" when the name
// is unknown. This is the silent-drop policy: an unrecognized icon token
// costs nothing to render and raises no error.
func Glyph(name string) string {
	icon, ok := iconNames[name]
	if !ok {
		return ""
	}
	return iconGlyphs[icon]
}
