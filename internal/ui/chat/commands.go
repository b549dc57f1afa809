// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/robera-dev/guide-tui/internal/gateway"
	"github.com/robera-dev/guide-tui/internal/github"
	"github.com/robera-dev/guide-tui/internal/history"
)

// analysisTimeout bounds the whole GitHub fetch plus narrative round trip.
const analysisTimeout = 2 * time.Minute

// =============================================================================
// STREAMING COMMAND
// =============================================================================

// streamCmd runs one streaming completion. Tokens go into the buffer as
// they arrive; the final message carries the full content.
func streamCmd(ctx context.Context, client *gateway.Client, req gateway.Request, buf *StreamingBuffer, generation int) tea.Cmd {
	return func() tea.Msg {
		content, err := client.Stream(ctx, req, func(text string) {
			buf.Write(text)
		})
		if err != nil {
			partial := content
			var streamErr *gateway.StreamError
			if errors.As(err, &streamErr) {
				partial = streamErr.Partial
			}
			return StreamErrorMsg{Generation: generation, Partial: partial, Err: err}
		}
		return StreamDoneMsg{Generation: generation, Content: content}
	}
}

// =============================================================================
// GITHUB COMMANDS
// =============================================================================

// analyzeRepo fetches repository data, through the cache when one is
// configured.
func (m *Model) analyzeRepo(ctx context.Context, url string) (*github.RepoData, error) {
	if m.deps.GitHub == nil {
		return nil, fmt.Errorf("github client not configured")
	}
	if m.deps.Cache != nil {
		return m.deps.Cache.Analyze(ctx, m.deps.GitHub, url)
	}
	return m.deps.GitHub.Analyze(ctx, url)
}

// reportCmd builds the full repository analysis report off the main loop.
func (m *Model) reportCmd(url string, generation int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
		defer cancel()

		data, err := m.analyzeRepo(ctx, url)
		if err != nil {
			return ReportReadyMsg{Generation: generation, Err: err}
		}

		var ai github.Completer
		if m.deps.Gateway != nil {
			ai = m.deps.Gateway
		}
		return ReportReadyMsg{
			Generation: generation,
			Report:     github.BuildReport(ctx, data, ai),
		}
	}
}

// readmeCmd fetches a repository README for rendering.
func (m *Model) readmeCmd(url string, generation int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
		defer cancel()

		data, err := m.analyzeRepo(ctx, url)
		if err != nil {
			return ReadmeReadyMsg{Generation: generation, Err: err}
		}
		if data.Readme == "" {
			return ReadmeReadyMsg{
				Generation: generation,
				Err:        fmt.Errorf("%s has no README", data.Name),
			}
		}
		return ReadmeReadyMsg{
			Generation: generation,
			RepoName:   data.Name,
			Markdown:   data.Readme,
		}
	}
}

// =============================================================================
// PERSISTENCE COMMANDS
// =============================================================================

// saveCmd persists the current conversation in the background.
func saveCmd(store *history.Store, conv *history.Conversation) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		id, err := store.Save(conv)
		return ConversationSavedMsg{ID: id, Err: err}
	}
}

// exportCmd writes the conversation as markdown to path.
func exportCmd(store *history.Store, id, path string) tea.Cmd {
	return func() tea.Msg {
		if store == nil {
			return ExportDoneMsg{Path: path, Err: fmt.Errorf("history is disabled")}
		}
		if id == "" {
			return ExportDoneMsg{Path: path, Err: fmt.Errorf("nothing to export yet")}
		}
		return ExportDoneMsg{Path: path, Err: store.Export(id, path)}
	}
}
