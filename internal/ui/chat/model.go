// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/robera-dev/guide-tui/internal/cache"
	"github.com/robera-dev/guide-tui/internal/commands"
	"github.com/robera-dev/guide-tui/internal/config"
	"github.com/robera-dev/guide-tui/internal/gateway"
	"github.com/robera-dev/guide-tui/internal/github"
	"github.com/robera-dev/guide-tui/internal/history"
	"github.com/robera-dev/guide-tui/internal/prompt"
	"github.com/robera-dev/guide-tui/internal/ui/components"
	"github.com/robera-dev/guide-tui/internal/ui/styles"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Deps bundles the services the chat model talks to. Cache and History
// are nil when disabled in the config.
type Deps struct {
	Gateway *gateway.Client
	GitHub  *github.Client
	Cache   *cache.Store
	History *history.Store
	Config  *config.Config
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// entryKind selects how a transcript entry is rendered.
type entryKind int

const (
	entryUser entryKind = iota
	entryAssistant
	entrySystem
	entryError
)

type entry struct {
	kind    entryKind
	content string
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	deps Deps

	theme    *styles.Theme
	renderer *components.Renderer
	registry *commands.Registry
	parser   *commands.Parser
	cmdCtx   *commands.Context

	input    textarea.Model
	viewport viewport.Model
	spin     spinner.Model

	mode       prompt.Mode
	transcript []entry

	// conversationID is set after the first save; reused for later saves
	// so one session stays one file.
	conversationID string

	// generation increments whenever an in-flight request is superseded.
	// Async results carrying an older generation are discarded.
	generation int

	streaming    bool
	busy         bool
	streamBuf    *StreamingBuffer
	partial      string
	cancelStream context.CancelFunc

	width  int
	height int
	ready  bool
}

// New creates the chat model.
func New(deps Deps) *Model {
	theme := styles.NewTheme()

	input := textarea.New()
	input.Placeholder = "Ask about Robera's work, or type /help"
	input.Prompt = "❯ "
	input.CharLimit = 4000
	input.SetHeight(1)
	input.ShowLineNumbers = false
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = theme.Spinner

	registry := commands.NewRegistry()

	m := &Model{
		deps:      deps,
		theme:     theme,
		renderer:  components.NewRenderer(theme, 80),
		registry:  registry,
		parser:    commands.NewParser(registry),
		cmdCtx:    &commands.Context{History: deps.History},
		input:     input,
		spin:      spin,
		mode:      prompt.ModeChat,
		streamBuf: NewStreamingBuffer(),
	}

	m.systemNotice("Welcome to the AI Guide. Type /help to see commands.")
	return m
}

// Init starts the spinner tick.
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// Mode returns the active assistant mode.
func (m *Model) Mode() prompt.Mode {
	return m.mode
}

// systemNotice appends an informational line to the transcript.
func (m *Model) systemNotice(text string) {
	m.transcript = append(m.transcript, entry{kind: entrySystem, content: text})
}

// errorNotice appends an error line to the transcript.
func (m *Model) errorNotice(text string) {
	m.transcript = append(m.transcript, entry{kind: entryError, content: text})
}

// priorMessages flattens the transcript into backend messages, skipping
// system notices and errors.
func (m *Model) priorMessages() []gateway.Message {
	var msgs []gateway.Message
	for _, e := range m.transcript {
		switch e.kind {
		case entryUser:
			msgs = append(msgs, gateway.Message{Role: "user", Content: e.content})
		case entryAssistant:
			msgs = append(msgs, gateway.Message{Role: "assistant", Content: e.content})
		}
	}
	return msgs
}

// bumpGeneration invalidates any in-flight async work and cancels an
// active stream. The stream buffer is replaced, not reset: the old
// goroutine holds a reference to the old buffer and may still write
// already-received chunks after cancellation, so those writes land in
// an orphaned buffer nothing flushes from.
func (m *Model) bumpGeneration() {
	m.generation++
	if m.cancelStream != nil {
		m.cancelStream()
		m.cancelStream = nil
	}
	m.streamBuf = NewStreamingBuffer()
	m.partial = ""
	m.streaming = false
	m.busy = false
}

// toConversation snapshots the transcript for persistence.
func (m *Model) toConversation() *history.Conversation {
	conv := &history.Conversation{
		ID:   m.conversationID,
		Mode: string(m.mode),
	}
	for _, e := range m.transcript {
		switch e.kind {
		case entryUser:
			conv.Messages = append(conv.Messages, history.NewMessage("user", e.content))
		case entryAssistant:
			conv.Messages = append(conv.Messages, history.NewMessage("assistant", e.content))
		}
	}
	return conv
}

// loadConversation replaces the transcript with a stored conversation.
func (m *Model) loadConversation(conv *history.Conversation) {
	m.bumpGeneration()
	m.transcript = nil
	m.conversationID = conv.ID
	if conv.Mode != "" && prompt.Mode(conv.Mode).Valid() {
		m.mode = prompt.Mode(conv.Mode)
	}
	for _, msg := range conv.Messages {
		switch msg.Role {
		case "user":
			m.transcript = append(m.transcript, entry{kind: entryUser, content: msg.Content})
		case "assistant":
			m.transcript = append(m.transcript, entry{kind: entryAssistant, content: msg.Content})
		}
	}
	m.systemNotice("Resumed conversation " + conv.ID)
}
