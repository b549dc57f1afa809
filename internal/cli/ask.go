// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robera-dev/guide-tui/internal/gateway"
	"github.com/robera-dev/guide-tui/internal/prompt"
)

const oneShotTimeout = 2 * time.Minute

// HandleAsk answers a single question and prints the response.
func HandleAsk(args []string) {
	p := NewArgParser(args)

	question := strings.Join(p.Positional(), " ")
	if question == "" {
		Fatal(fmt.Errorf("usage: guide ask <question>"))
	}

	mode := prompt.Mode(p.FlagOrDefault("mode", string(prompt.ModeChat)))
	if !mode.Valid() || mode == prompt.ModeGitHub {
		Fatal(fmt.Errorf("unknown mode %q (want chat, analyze, or generate)", mode))
	}
	if prompt.OverBudget(question) {
		Fatal(fmt.Errorf("question is too long"))
	}

	cfg := loadConfig(p)
	client := gateway.NewClient(cfg.Gateway.BaseURL)

	ctx, cancel := context.WithTimeout(context.Background(), oneShotTimeout)
	defer cancel()

	answer, err := client.Complete(ctx, prompt.Build(mode, question))
	if err != nil {
		Fatal(err)
	}

	fmt.Println(renderResponse(answer, p.BoolFlag("plain")))
}
