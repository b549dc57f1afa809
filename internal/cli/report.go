// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/robera-dev/guide-tui/internal/cache"
	"github.com/robera-dev/guide-tui/internal/gateway"
	"github.com/robera-dev/guide-tui/internal/github"
)

// HandleReport prints a full repository analysis report.
func HandleReport(args []string) {
	p := NewArgParser(args)

	pos := p.Positional()
	if len(pos) != 1 {
		Fatal(fmt.Errorf("usage: guide report <repo-url>"))
	}
	url := pos[0]

	cfg := loadConfig(p)
	gh := github.NewClient(cfg.GitHub.Token)

	ctx, cancel := context.WithTimeout(context.Background(), oneShotTimeout)
	defer cancel()

	var data *github.RepoData
	var err error
	if cfg.Cache.Enabled {
		store, openErr := cache.Open(cfg.Cache.Path, cfg.Cache.TTL())
		if openErr != nil {
			// A broken cache should not block the report.
			log.Printf("cache unavailable: %v", openErr)
			data, err = gh.Analyze(ctx, url)
		} else {
			defer store.Close()
			data, err = store.Analyze(ctx, gh, url)
		}
	} else {
		data, err = gh.Analyze(ctx, url)
	}
	if err != nil {
		Fatal(err)
	}

	var ai github.Completer
	if cfg.Gateway.BaseURL != "" {
		ai = gateway.NewClient(cfg.Gateway.BaseURL)
	}

	report := github.BuildReport(ctx, data, ai)
	fmt.Println(renderResponse(report, p.BoolFlag("plain")))
}
