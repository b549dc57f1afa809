// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prompt

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"github.com/robera-dev/guide-tui/internal/gateway"
)

var (
	codec     tokenizer.Codec
	codecOnce sync.Once
	codecErr  error
)

// getCodec returns the cl100k_base tokenizer, a reasonable approximation
// for the backend's models.
func getCodec() (tokenizer.Codec, error) {
	codecOnce.Do(func() {
		codec, codecErr = tokenizer.Get(tokenizer.Cl100kBase)
	})
	return codec, codecErr
}

// EstimateTokens returns an approximate token count for the given text.
func EstimateTokens(text string) (int, error) {
	c, err := getCodec()
	if err != nil {
		return 0, err
	}
	ids, _, err := c.Encode(text)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// EstimateRequestTokens sums the token estimate over every message in a
// built request, defaulting to 0 on tokenizer errors.
func EstimateRequestTokens(req gateway.Request) int {
	var total int
	for _, msg := range req.Messages {
		n, err := EstimateTokens(msg.Content)
		if err != nil {
			return 0
		}
		total += n
	}
	return total
}

// OverBudget reports whether the input would exceed the soft input
// ceiling. Tokenizer failures never block input.
func OverBudget(text string) bool {
	n, err := EstimateTokens(text)
	if err != nil {
		return false
	}
	return n > MaxInputTokens
}
