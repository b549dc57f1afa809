// guide - a terminal AI guide to Robera's portfolio.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/robera-dev/guide-tui/internal/cache"
	"github.com/robera-dev/guide-tui/internal/cli"
	"github.com/robera-dev/guide-tui/internal/config"
	"github.com/robera-dev/guide-tui/internal/gateway"
	"github.com/robera-dev/guide-tui/internal/github"
	"github.com/robera-dev/guide-tui/internal/history"
	"github.com/robera-dev/guide-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI()
	case cli.CmdAsk:
		cli.HandleAsk(args)
	case cli.CmdReport:
		cli.HandleReport(args)
	case cli.CmdServe:
		cli.HandleServe(args)
	case cli.CmdCache:
		cli.HandleCache(args)
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.HandleHelp()
	}
}

func runTUI() {
	cfg, err := config.Load()
	if err != nil {
		cli.Fatal(err)
	}

	deps := chat.Deps{
		Gateway: gateway.NewClient(cfg.Gateway.BaseURL),
		GitHub:  github.NewClient(cfg.GitHub.Token),
		Config:  cfg,
	}

	if cfg.Cache.Enabled {
		store, err := cache.Open(cfg.Cache.Path, cfg.Cache.TTL())
		if err != nil {
			// A broken cache degrades to direct fetches.
			log.Printf("cache unavailable: %v", err)
		} else {
			deps.Cache = store
			defer store.Close()
		}
	}

	if cfg.History.Enabled {
		store, err := history.NewStore(cfg.History.Dir)
		if err != nil {
			log.Printf("history unavailable: %v", err)
		} else {
			store.MaxConversations = cfg.History.MaxConversations
			deps.History = store
		}
	}

	program := tea.NewProgram(
		chat.New(deps),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "guide: %v\n", err)
		os.Exit(1)
	}
}
