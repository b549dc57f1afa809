// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "time"

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// Every asynchronous result carries the Generation it was started under.
// The model discards results whose generation no longer matches, so a
// canceled or superseded request can never write into the transcript.

// StreamTickMsg drives buffered flushes of streamed tokens at a capped
// frame rate.
type StreamTickMsg struct {
	Time time.Time
}

// StreamDoneMsg reports a completed streaming response.
type StreamDoneMsg struct {
	Generation int
	Content    string
}

// StreamErrorMsg reports a failed stream. Partial holds whatever content
// arrived before the failure.
type StreamErrorMsg struct {
	Generation int
	Partial    string
	Err        error
}

// =============================================================================
// GITHUB MESSAGES
// =============================================================================

// ReportReadyMsg carries a finished repository analysis report.
type ReportReadyMsg struct {
	Generation int
	Report     string
	Err        error
}

// ReadmeReadyMsg carries fetched README content for rendering.
type ReadmeReadyMsg struct {
	Generation int
	RepoName   string
	Markdown   string
	Err        error
}

// =============================================================================
// PERSISTENCE MESSAGES
// =============================================================================

// ConversationSavedMsg reports the outcome of a background save.
type ConversationSavedMsg struct {
	ID  string
	Err error
}

// ExportDoneMsg reports the outcome of /export.
type ExportDoneMsg struct {
	Path string
	Err  error
}
