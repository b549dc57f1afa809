// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/robera-dev/guide-tui/internal/history"
	"github.com/robera-dev/guide-tui/internal/prompt"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command is a slash command.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h")
	Aliases []string

	// Description is shown in help
	Description string

	// Usage shows argument syntax (e.g., "/mode <chat|analyze|generate>")
	Usage string

	// Handler executes the command
	Handler func(ctx *Context, args []string) tea.Cmd
}

// Context carries the dependencies command handlers need.
type Context struct {
	History *history.Store
}

// =============================================================================
// MESSAGES
// =============================================================================

// ShowHelpMsg asks the UI to display the command help.
type ShowHelpMsg struct {
	Text string
}

// ModeSwitchMsg switches the assistant persona.
type ModeSwitchMsg struct {
	Mode prompt.Mode
}

// GitHubReportMsg requests a repository analysis report.
type GitHubReportMsg struct {
	URL string
}

// ReadmeMsg requests a rendered README for a repository.
type ReadmeMsg struct {
	URL string
}

// NewConversationMsg starts a fresh conversation.
type NewConversationMsg struct{}

// SessionListMsg carries the stored conversation listing.
type SessionListMsg struct {
	Sessions []history.Meta
	Err      error
}

// ResumeMsg carries a loaded conversation to resume.
type ResumeMsg struct {
	Conversation *history.Conversation
	Err          error
}

// ExportRequestMsg asks the UI to export the current conversation.
type ExportRequestMsg struct {
	Path string
}

// ClearMsg clears the transcript without starting a new conversation.
type ClearMsg struct{}

// ErrorMsg reports a command usage error to the UI.
type ErrorMsg struct {
	Err error
}

func errCmd(format string, args ...any) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Err: fmt.Errorf(format, args...)}
	}
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get looks up a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	return r.aliases[name]
}

// All returns every command sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// HelpText renders the command list for /help.
func (r *Registry) HelpText() string {
	var b strings.Builder
	b.WriteString("Available commands:\n\n")
	for _, cmd := range r.All() {
		usage := cmd.Usage
		if usage == "" {
			usage = cmd.Name
		}
		fmt.Fprintf(&b, "  %-36s %s\n", usage, cmd.Description)
	}
	return b.String()
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show available commands",
		Handler: func(ctx *Context, args []string) tea.Cmd {
			text := r.HelpText()
			return func() tea.Msg { return ShowHelpMsg{Text: text} }
		},
	})

	r.Register(&Command{
		Name:        "/mode",
		Description: "Switch assistant mode",
		Usage:       "/mode <chat|analyze|generate>",
		Handler: func(ctx *Context, args []string) tea.Cmd {
			if len(args) != 1 {
				return errCmd("usage: /mode <chat|analyze|generate>")
			}
			mode := prompt.Mode(args[0])
			if !mode.Valid() || mode == prompt.ModeGitHub {
				return errCmd("unknown mode %q", args[0])
			}
			return func() tea.Msg { return ModeSwitchMsg{Mode: mode} }
		},
	})

	r.Register(&Command{
		Name:        "/github",
		Aliases:     []string{"/gh"},
		Description: "Analyze a GitHub repository",
		Usage:       "/github <url>",
		Handler: func(ctx *Context, args []string) tea.Cmd {
			if len(args) != 1 {
				return errCmd("usage: /github <url>")
			}
			url := args[0]
			return func() tea.Msg { return GitHubReportMsg{URL: url} }
		},
	})

	r.Register(&Command{
		Name:        "/readme",
		Description: "Render a repository README",
		Usage:       "/readme <url>",
		Handler: func(ctx *Context, args []string) tea.Cmd {
			if len(args) != 1 {
				return errCmd("usage: /readme <url>")
			}
			url := args[0]
			return func() tea.Msg { return ReadmeMsg{URL: url} }
		},
	})

	r.Register(&Command{
		Name:        "/new",
		Description: "Start a new conversation",
		Handler: func(ctx *Context, args []string) tea.Cmd {
			return func() tea.Msg { return NewConversationMsg{} }
		},
	})

	r.Register(&Command{
		Name:        "/sessions",
		Aliases:     []string{"/ls"},
		Description: "List saved conversations",
		Handler: func(ctx *Context, args []string) tea.Cmd {
			store := ctx.History
			return func() tea.Msg {
				if store == nil {
					return SessionListMsg{Err: fmt.Errorf("history is disabled")}
				}
				metas, err := store.List()
				return SessionListMsg{Sessions: metas, Err: err}
			}
		},
	})

	r.Register(&Command{
		Name:        "/resume",
		Description: "Resume a saved conversation",
		Usage:       "/resume <id>",
		Handler: func(ctx *Context, args []string) tea.Cmd {
			if len(args) != 1 {
				return errCmd("usage: /resume <id>")
			}
			id := args[0]
			store := ctx.History
			return func() tea.Msg {
				if store == nil {
					return ResumeMsg{Err: fmt.Errorf("history is disabled")}
				}
				conv, err := store.Load(id)
				return ResumeMsg{Conversation: conv, Err: err}
			}
		},
	})

	r.Register(&Command{
		Name:        "/export",
		Description: "Export the conversation as markdown",
		Usage:       "/export <file>",
		Handler: func(ctx *Context, args []string) tea.Cmd {
			if len(args) != 1 {
				return errCmd("usage: /export <file>")
			}
			path := args[0]
			return func() tea.Msg { return ExportRequestMsg{Path: path} }
		},
	})

	r.Register(&Command{
		Name:        "/clear",
		Description: "Clear the transcript",
		Handler: func(ctx *Context, args []string) tea.Cmd {
			return func() tea.Msg { return ClearMsg{} }
		},
	})

	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Exit the guide",
		Handler: func(ctx *Context, args []string) tea.Cmd {
			return tea.Quit
		},
	})
}
