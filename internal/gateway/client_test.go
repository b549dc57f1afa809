// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/api/ai" {
			t.Errorf("expected /api/ai, got %s", r.URL.Path)
		}

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Stream {
			t.Errorf("Complete must not set stream")
		}
		if len(req.Messages) != 2 {
			t.Errorf("expected 2 messages, got %d", len(req.Messages))
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"Hello there"}}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	got, err := client.Complete(context.Background(), Request{
		Messages: []Message{
			NewSystemMessage("You are a guide."),
			NewUserMessage("hi"),
		},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "Hello there" {
		t.Errorf("expected %q, got %q", "Hello there", got)
	}
}

func TestComplete_BackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"error":"upstream unavailable"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{NewUserMessage("hi")},
	})
	if err == nil {
		t.Fatal("expected error")
	}

	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected BackendError, got %T: %v", err, err)
	}
	if be.Status != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", be.Status)
	}
	if be.Message != "upstream unavailable" {
		t.Errorf("unexpected message: %q", be.Message)
	}
}

// A non-OK response must not be retried: exactly one request reaches the
// backend.
func TestComplete_NoRetry(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.Complete(context.Background(), Request{}); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected exactly 1 request, got %d", calls)
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Complete(context.Background(), Request{})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if !req.Stream {
			t.Errorf("Stream must set stream=true")
		}

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"text\": \"Hello\"}\n\n")
		fmt.Fprint(w, "data: {\"text\": \" world\"}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewClient(server.URL)
	var chunks []string
	full, err := client.Stream(context.Background(), Request{
		Messages: []Message{NewUserMessage("hi")},
	}, func(text string) {
		chunks = append(chunks, text)
	})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	if full != "Hello world" {
		t.Errorf("expected accumulated %q, got %q", "Hello world", full)
	}
	if len(chunks) != 2 || chunks[0] != "Hello" || chunks[1] != " world" {
		t.Errorf("unexpected chunks: %v", chunks)
	}
}

// Malformed frames are skipped; valid frames before and after still arrive.
func TestStream_SkipsMalformedChunks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"text\": \"ok1\"}\n\n")
		fmt.Fprint(w, "data: {not json at all\n\n")
		fmt.Fprint(w, "data: {\"text\": \"ok2\"}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewClient(server.URL)
	full, err := client.Stream(context.Background(), Request{}, func(string) {})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	if full != "ok1ok2" {
		t.Errorf("expected %q, got %q", "ok1ok2", full)
	}
}

// A stream that ends without [DONE] still returns what arrived.
func TestStream_EOFWithoutDone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"text\": \"partial\"}\n\n")
	}))
	defer server.Close()

	client := NewClient(server.URL)
	full, err := client.Stream(context.Background(), Request{}, func(string) {})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	if full != "partial" {
		t.Errorf("expected %q, got %q", "partial", full)
	}
}

func TestStream_BackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":"rate limited"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Stream(context.Background(), Request{}, func(string) {})
	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected BackendError, got %T: %v", err, err)
	}
	if be.Status != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", be.Status)
	}
}

func TestSSEReader(t *testing.T) {
	input := "data: one\n\n: comment line\nid: 42\ndata: two\n\n"
	reader := NewSSEReader(strings.NewReader(input))

	data, err := reader.ReadEvent()
	if err != nil || string(data) != "one" {
		t.Fatalf("event 1: %q, %v", data, err)
	}

	data, err = reader.ReadEvent()
	if err != nil || string(data) != "two" {
		t.Fatalf("event 2: %q, %v", data, err)
	}

	if _, err := reader.ReadEvent(); err == nil {
		t.Error("expected EOF at end of stream")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("")
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("expected default base URL, got %q", c.BaseURL())
	}
	c = NewClient("http://example.com/")
	if c.BaseURL() != "http://example.com" {
		t.Errorf("trailing slash should be trimmed: %q", c.BaseURL())
	}
}
