// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package format turns raw AI Guide response text into typed render blocks.
//
// Responses arrive as plain text carrying a small markdown dialect: fenced
// code blocks, headings, bullet lines, pipe tables, **bold**, plus the
// guide-specific micro-syntax {icon=Name}, {bold=text} and
// [label](url) {icon=Name}. Format performs a deterministic two-phase pass
// over that text:
//
//  1. Code-fence extraction. Fenced regions are lifted out first so their
//     bodies are never re-interpreted as markdown. An unterminated final
//     fence auto-closes at end of text.
//  2. Line classification. The remaining text spans are classified line by
//     line (spacer, table, bold heading, bullet, heading, paragraph) and
//     inline content is split into plain/bold/icon/link runs.
//
// The transform is pure: no I/O, no shared state, and no error path - any
// input string yields a best-effort block sequence. Rendering (including the
// resolution of icon names to glyphs) is a separate concern; see
// internal/ui/components.
package format
