// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/robera-dev/guide-tui/internal/prompt"
)

// Fixed row budgets for the non-viewport chrome.
const (
	headerHeight = 3
	inputHeight  = 3
	statusHeight = 1
)

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.MouseWheelEnabled = true
	return vp
}

// contentWidth is the usable width inside the chrome.
func (m *Model) contentWidth() int {
	w := m.width - 2
	if w < 20 {
		w = 20
	}
	return w
}

// View renders the whole chat screen.
func (m *Model) View() string {
	if !m.ready {
		return "Starting the guide..."
	}

	return strings.Join([]string{
		m.headerView(),
		m.viewport.View(),
		m.inputView(),
		m.statusView(),
	}, "\n")
}

// =============================================================================
// SECTIONS
// =============================================================================

func (m *Model) headerView() string {
	title := m.theme.HeaderTitle.Render("AI Guide")
	subtitle := m.theme.HeaderSubtitle.Render("ask about Robera's projects and experience")
	return m.theme.Header.Width(m.contentWidth()).Render(title + "  " + subtitle)
}

func (m *Model) inputView() string {
	return m.theme.InputContainer.Width(m.contentWidth()).Render(m.input.View())
}

func (m *Model) statusView() string {
	left := m.theme.ModeBadge.Render(strings.ToUpper(string(m.mode)))

	var middle string
	switch {
	case m.streaming:
		middle = m.spin.View() + m.theme.ThinkingText.Render(" responding...")
	case m.busy:
		middle = m.spin.View() + m.theme.ThinkingText.Render(" analyzing...")
	default:
		middle = m.theme.ShortcutKey.Render("enter") + m.theme.ShortcutDesc.Render(" send  ") +
			m.theme.ShortcutKey.Render("esc") + m.theme.ShortcutDesc.Render(" cancel  ") +
			m.theme.ShortcutKey.Render("ctrl+c") + m.theme.ShortcutDesc.Render(" quit")
	}

	right := m.tokenCountView()

	gap := m.contentWidth() - lipgloss.Width(left) - lipgloss.Width(middle) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}
	return m.theme.StatusBar.Render(left + "  " + middle + strings.Repeat(" ", gap) + right)
}

func (m *Model) tokenCountView() string {
	if m.deps.Config == nil || !m.deps.Config.UI.ShowTokenCount {
		return ""
	}
	text := m.input.Value()
	if text == "" {
		return ""
	}
	n, err := prompt.EstimateTokens(text)
	if err != nil {
		return ""
	}
	return m.theme.TokenCount.Render(fmt.Sprintf("~%d tok", n))
}

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// refreshViewport re-renders the transcript, including any partial
// streaming content, and scrolls to the bottom.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.transcriptView())
	m.viewport.GotoBottom()
}

func (m *Model) transcriptView() string {
	var sections []string

	for _, e := range m.transcript {
		sections = append(sections, m.renderEntry(e))
	}

	if m.streaming && m.partial != "" {
		sections = append(sections,
			m.theme.AssistantLabel.Render("Guide")+"\n"+m.renderer.Render(m.partial))
	}

	return strings.Join(sections, "\n\n")
}

func (m *Model) renderEntry(e entry) string {
	switch e.kind {
	case entryUser:
		return m.theme.UserLabel.Render("You") + "\n" +
			m.theme.UserMessage.Render(e.content)

	case entryAssistant:
		return m.theme.AssistantLabel.Render("Guide") + "\n" +
			m.renderer.Render(e.content)

	case entryError:
		return m.theme.ErrorTitle.Render("✗ ") + m.theme.ErrorMessage.Render(e.content)

	default:
		return m.theme.SystemNotice.Render(e.content)
	}
}
