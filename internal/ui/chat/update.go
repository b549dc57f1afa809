// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/robera-dev/guide-tui/internal/commands"
	"github.com/robera-dev/guide-tui/internal/prompt"
	"github.com/robera-dev/guide-tui/internal/ui/components"
	"github.com/robera-dev/guide-tui/internal/util"
)

// Update is the Bubble Tea update loop.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamTickMsg:
		return m.handleStreamTick()

	case StreamDoneMsg:
		return m.handleStreamDone(msg)

	case StreamErrorMsg:
		return m.handleStreamError(msg)

	case ReportReadyMsg:
		return m.handleReportReady(msg)

	case ReadmeReadyMsg:
		return m.handleReadmeReady(msg)

	case ConversationSavedMsg:
		if msg.Err == nil && msg.ID != "" {
			m.conversationID = msg.ID
		}
		return m, nil

	case ExportDoneMsg:
		if msg.Err != nil {
			m.errorNotice("Export failed: " + msg.Err.Error())
		} else {
			m.systemNotice("Exported to " + msg.Path)
		}
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		if !m.streaming && !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	// Slash command results.
	case commands.ShowHelpMsg:
		m.systemNotice(msg.Text)
		m.refreshViewport()
		return m, nil

	case commands.ModeSwitchMsg:
		m.mode = msg.Mode
		m.systemNotice("Switched to " + string(msg.Mode) + " mode")
		m.refreshViewport()
		return m, nil

	case commands.GitHubReportMsg:
		return m.startReport(msg.URL)

	case commands.ReadmeMsg:
		return m.startReadme(msg.URL)

	case commands.NewConversationMsg:
		m.bumpGeneration()
		m.transcript = nil
		m.conversationID = ""
		m.systemNotice("Started a new conversation.")
		m.refreshViewport()
		return m, nil

	case commands.ClearMsg:
		m.transcript = nil
		m.systemNotice("Transcript cleared.")
		m.refreshViewport()
		return m, nil

	case commands.SessionListMsg:
		return m.handleSessionList(msg)

	case commands.ResumeMsg:
		if msg.Err != nil {
			m.errorNotice("Resume failed: " + msg.Err.Error())
		} else {
			m.loadConversation(msg.Conversation)
		}
		m.refreshViewport()
		return m, nil

	case commands.ExportRequestMsg:
		return m, exportCmd(m.deps.History, m.conversationID, msg.Path)

	case commands.ErrorMsg:
		m.errorNotice(msg.Err.Error())
		m.refreshViewport()
		return m, nil
	}

	return m.updateChildren(msg)
}

// =============================================================================
// LAYOUT AND KEYS
// =============================================================================

func (m *Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	contentWidth := msg.Width - 2
	m.renderer = components.NewRenderer(m.theme, contentWidth)

	viewportHeight := msg.Height - inputHeight - headerHeight - statusHeight
	if viewportHeight < 3 {
		viewportHeight = 3
	}

	if !m.ready {
		m.viewport = newViewport(contentWidth, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = viewportHeight
	}
	m.input.SetWidth(contentWidth - 4)
	m.refreshViewport()
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.streaming || m.busy {
			m.cancelActive()
			return m, nil
		}
		m.input.Reset()
		return m, nil

	case "enter":
		return m.submit()
	}

	return m.updateChildren(msg)
}

// updateChildren forwards a message to the textarea and viewport.
func (m *Model) updateChildren(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// cancelActive aborts the in-flight request and notes it in the transcript.
func (m *Model) cancelActive() {
	wasStreaming := m.streaming
	partial := m.partial
	m.bumpGeneration()

	if wasStreaming && partial != "" {
		m.transcript = append(m.transcript, entry{kind: entryAssistant, content: partial})
	}
	m.systemNotice("Canceled.")
	m.refreshViewport()
}

// =============================================================================
// SUBMISSION
// =============================================================================

func (m *Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if m.streaming || m.busy {
		m.errorNotice("Still working. Press esc to cancel first.")
		m.refreshViewport()
		return m, nil
	}
	m.input.Reset()

	result := m.parser.Parse(text)
	if result.IsCommand {
		if result.Command == nil {
			m.errorNotice("Unknown command " + result.CommandName + ". Type /help.")
			m.refreshViewport()
			return m, nil
		}
		return m, result.Command.Handler(m.cmdCtx, result.Args)
	}

	return m.startStream(text)
}

// startStream kicks off a streaming chat completion for the input.
func (m *Model) startStream(text string) (tea.Model, tea.Cmd) {
	if m.deps.Gateway == nil {
		m.errorNotice("Backend not configured.")
		m.refreshViewport()
		return m, nil
	}
	if prompt.OverBudget(text) {
		m.errorNotice("That message is too long. Try trimming it down.")
		m.refreshViewport()
		return m, nil
	}

	prior := m.priorMessages()
	m.transcript = append(m.transcript, entry{kind: entryUser, content: text})
	m.refreshViewport()

	m.bumpGeneration()
	m.streaming = true
	generation := m.generation

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelStream = cancel

	req := prompt.BuildWithHistory(m.mode, prior, text)
	return m, tea.Batch(
		streamCmd(ctx, m.deps.Gateway, req, m.streamBuf, generation),
		streamTickCmd(),
		m.spin.Tick,
	)
}

func (m *Model) startReport(url string) (tea.Model, tea.Cmd) {
	m.bumpGeneration()
	m.busy = true
	m.systemNotice("Analyzing " + url + " ...")
	m.refreshViewport()
	return m, tea.Batch(m.reportCmd(url, m.generation), m.spin.Tick)
}

func (m *Model) startReadme(url string) (tea.Model, tea.Cmd) {
	m.bumpGeneration()
	m.busy = true
	m.systemNotice("Fetching README for " + url + " ...")
	m.refreshViewport()
	return m, tea.Batch(m.readmeCmd(url, m.generation), m.spin.Tick)
}

// =============================================================================
// ASYNC RESULTS
// =============================================================================

func (m *Model) handleStreamTick() (tea.Model, tea.Cmd) {
	if !m.streaming {
		return m, nil
	}
	if content, ok := m.streamBuf.Flush(); ok {
		m.partial += content
		m.refreshViewport()
	}
	return m, streamTickCmd()
}

func (m *Model) handleStreamDone(msg StreamDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Generation != m.generation {
		return m, nil
	}
	m.streamBuf.Reset()
	m.partial = ""
	m.streaming = false
	m.cancelStream = nil

	m.transcript = append(m.transcript, entry{kind: entryAssistant, content: msg.Content})
	m.refreshViewport()

	return m, saveCmd(m.deps.History, m.toConversation())
}

func (m *Model) handleStreamError(msg StreamErrorMsg) (tea.Model, tea.Cmd) {
	if msg.Generation != m.generation {
		return m, nil
	}
	m.streamBuf.Reset()
	m.partial = ""
	m.streaming = false
	m.cancelStream = nil

	if msg.Partial != "" {
		m.transcript = append(m.transcript, entry{kind: entryAssistant, content: msg.Partial})
	}
	m.errorNotice("Response interrupted: " + msg.Err.Error())
	m.refreshViewport()
	return m, nil
}

func (m *Model) handleReportReady(msg ReportReadyMsg) (tea.Model, tea.Cmd) {
	if msg.Generation != m.generation {
		return m, nil
	}
	m.busy = false

	if msg.Err != nil {
		m.errorNotice("Analysis failed: " + msg.Err.Error())
		m.refreshViewport()
		return m, nil
	}
	m.transcript = append(m.transcript, entry{kind: entryAssistant, content: msg.Report})
	m.refreshViewport()
	return m, saveCmd(m.deps.History, m.toConversation())
}

func (m *Model) handleReadmeReady(msg ReadmeReadyMsg) (tea.Model, tea.Cmd) {
	if msg.Generation != m.generation {
		return m, nil
	}
	m.busy = false

	if msg.Err != nil {
		m.errorNotice("README unavailable: " + msg.Err.Error())
		m.refreshViewport()
		return m, nil
	}

	rendered := components.RenderMarkdown(msg.Markdown, m.contentWidth(), m.theme.IsDark)
	m.transcript = append(m.transcript, entry{kind: entrySystem, content: rendered})
	m.refreshViewport()
	return m, nil
}

func (m *Model) handleSessionList(msg commands.SessionListMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.errorNotice("Sessions unavailable: " + msg.Err.Error())
		m.refreshViewport()
		return m, nil
	}
	if len(msg.Sessions) == 0 {
		m.systemNotice("No saved conversations yet.")
		m.refreshViewport()
		return m, nil
	}

	var b strings.Builder
	b.WriteString("Saved conversations:\n")
	for _, meta := range msg.Sessions {
		fmt.Fprintf(&b, "  %s  %s  (%d messages, %s)\n",
			shortID(meta.ID), util.TruncateWidth(meta.Summary, 40), meta.MessageCount,
			meta.UpdatedAt.Format("Jan 2 15:04"))
	}
	b.WriteString("Resume with /resume <id>")
	m.systemNotice(b.String())
	m.refreshViewport()
	return m, nil
}

// shortID trims a UUID to its first segment for display. Full IDs still
// work with /resume.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
