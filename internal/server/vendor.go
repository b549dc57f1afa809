// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// ============================================================================
// VENDOR
// ============================================================================

const (
	// DefaultVendorBaseURL is the Perplexity OpenAI-compatible endpoint.
	DefaultVendorBaseURL = "https://api.perplexity.ai"

	// DefaultModel is the model requested from the vendor.
	DefaultModel = "llama-3.1-70b-instruct"
)

// ErrNoVendorKey indicates the server was started without an API key.
var ErrNoVendorKey = errors.New("vendor API key not configured")

// Vendor forwards chat requests to the upstream LLM provider.
type Vendor interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
	Stream(ctx context.Context, req ChatRequest, onChunk func(string)) error
}

// OpenAIVendor talks to any OpenAI-compatible provider via the
// sashabaranov client.
type OpenAIVendor struct {
	client *openai.Client
	model  string
}

// NewOpenAIVendor creates a vendor client. Empty baseURL and model fall
// back to the Perplexity defaults.
func NewOpenAIVendor(apiKey, baseURL, model string) (*OpenAIVendor, error) {
	if apiKey == "" {
		return nil, ErrNoVendorKey
	}
	if baseURL == "" {
		baseURL = DefaultVendorBaseURL
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &OpenAIVendor{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// toVendorRequest maps an incoming request onto the vendor wire shape.
func (v *OpenAIVendor) toVendorRequest(req ChatRequest) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	return openai.ChatCompletionRequest{
		Model:            v.model,
		Messages:         messages,
		Temperature:      float32(req.Temperature),
		MaxTokens:        req.MaxTokens,
		PresencePenalty:  float32(req.PresencePenalty),
		FrequencyPenalty: float32(req.FrequencyPenalty),
	}
}

// Complete performs a non-streaming vendor call.
func (v *OpenAIVendor) Complete(ctx context.Context, req ChatRequest) (string, error) {
	resp, err := v.client.CreateChatCompletion(ctx, v.toVendorRequest(req))
	if err != nil {
		return "", fmt.Errorf("vendor completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("vendor returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream performs a streaming vendor call, invoking onChunk per delta.
func (v *OpenAIVendor) Stream(ctx context.Context, req ChatRequest, onChunk func(string)) error {
	vreq := v.toVendorRequest(req)
	vreq.Stream = true

	stream, err := v.client.CreateChatCompletionStream(ctx, vreq)
	if err != nil {
		return fmt.Errorf("vendor stream failed: %w", err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("vendor stream read failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			onChunk(delta)
		}
	}
}
