// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses command line arguments and implements the one-shot
// (non-TUI) commands.
package cli

import (
	"fmt"
	"os"
)

// Version information, set at build time.
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// COMMAND ROUTING
// =============================================================================

// Command identifies which top-level command was invoked.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdReport
	CmdServe
	CmdCache
	CmdVersion
	CmdHelp
)

const usageText = `guide - terminal AI guide to Robera's portfolio

Usage:
  guide                      Launch the interactive TUI (default)
  guide ask <question>       Ask one question and print the answer
  guide report <repo-url>    Print a GitHub repository analysis report
  guide serve                Run the backend gateway server
  guide cache purge          Clear the repository analysis cache
  guide version              Show version information
  guide help                 Show this help

Flags:
  --mode <chat|analyze|generate>   Persona for ask (default: chat)
  --plain                          Disable styled output
  --config <path>                  Use an alternate config file

Environment:
  GUIDE_GATEWAY_URL   Backend base URL
  GUIDE_VENDOR_KEY    Upstream LLM API key (serve)
  GUIDE_GITHUB_TOKEN  GitHub API token for higher rate limits
`

// Parse reads os.Args and returns the command plus its remaining
// arguments. No arguments means the TUI.
func Parse() (Command, []string) {
	args := os.Args[1:]
	if len(args) == 0 {
		return CmdTUI, nil
	}

	switch args[0] {
	case "tui":
		return CmdTUI, args[1:]
	case "ask":
		return CmdAsk, args[1:]
	case "report", "github":
		return CmdReport, args[1:]
	case "serve", "server":
		return CmdServe, args[1:]
	case "cache":
		return CmdCache, args[1:]
	case "version", "-v", "--version":
		return CmdVersion, nil
	case "help", "-h", "--help":
		return CmdHelp, nil
	default:
		// Flags without a command still mean the TUI.
		return CmdTUI, args
	}
}

// HandleVersion prints version information.
func HandleVersion() {
	fmt.Printf("guide %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}

// HandleHelp prints usage.
func HandleHelp() {
	fmt.Print(usageText)
}

// Fatal prints an error and exits nonzero.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "guide: %v\n", err)
	os.Exit(1)
}
