// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVendor answers with canned content or chunks.
type fakeVendor struct {
	content string
	chunks  []string
	err     error
}

func (f *fakeVendor) Complete(_ context.Context, _ ChatRequest) (string, error) {
	return f.content, f.err
}

func (f *fakeVendor) Stream(_ context.Context, _ ChatRequest, onChunk func(string)) error {
	if f.err != nil {
		return f.err
	}
	for _, c := range f.chunks {
		onChunk(c)
	}
	return nil
}

func newTestServer(t *testing.T, vendor Vendor) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewServer(0, vendor).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postAI(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/ai", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestHandleChat_NonStreaming(t *testing.T) {
	srv := newTestServer(t, &fakeVendor{content: "Hello from the vendor"})

	resp := postAI(t, srv, `{"messages":[{"role":"user","content":"hi"}]}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.Len(t, parsed.Choices, 1)
	assert.Equal(t, "Hello from the vendor", parsed.Choices[0].Message.Content)
}

func TestHandleChat_Streaming(t *testing.T) {
	srv := newTestServer(t, &fakeVendor{chunks: []string{"Hel", "lo"}})

	resp := postAI(t, srv, `{"messages":[{"role":"user","content":"hi"}],"stream":true}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var frames []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data: ") {
			frames = append(frames, strings.TrimPrefix(line, "data: "))
		}
	}

	require.Len(t, frames, 3)
	assert.JSONEq(t, `{"text":"Hel"}`, frames[0])
	assert.JSONEq(t, `{"text":"lo"}`, frames[1])
	assert.Equal(t, "[DONE]", frames[2])
}

// A mid-stream vendor failure still terminates the stream with [DONE]
// after whatever frames made it out.
func TestHandleChat_StreamVendorError(t *testing.T) {
	srv := newTestServer(t, &fakeVendor{err: errors.New("vendor down")})

	resp := postAI(t, srv, `{"messages":[{"role":"user","content":"hi"}],"stream":true}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sawDone bool
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if scanner.Text() == "data: [DONE]" {
			sawDone = true
		}
	}
	assert.True(t, sawDone)
}

func TestHandleChat_VendorError(t *testing.T) {
	srv := newTestServer(t, &fakeVendor{err: errors.New("vendor down")})

	resp := postAI(t, srv, `{"messages":[{"role":"user","content":"hi"}]}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["error"])
}

func TestHandleChat_Validation(t *testing.T) {
	srv := newTestServer(t, &fakeVendor{content: "ok"})

	tests := []struct {
		name string
		body string
	}{
		{"empty messages", `{"messages":[]}`},
		{"invalid role", `{"messages":[{"role":"tool","content":"x"}]}`},
		{"bad json", `{messages`},
		{"temperature out of range", `{"messages":[{"role":"user","content":"x"}],"temperature":5}`},
		{"max_tokens out of range", `{"messages":[{"role":"user","content":"x"}],"max_tokens":999999}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postAI(t, srv, tt.body)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestHandleChat_TooManyMessages(t *testing.T) {
	srv := newTestServer(t, &fakeVendor{content: "ok"})

	var msgs []string
	for i := 0; i <= MaxMessageCount; i++ {
		msgs = append(msgs, `{"role":"user","content":"x"}`)
	}
	resp := postAI(t, srv, fmt.Sprintf(`{"messages":[%s]}`, strings.Join(msgs, ",")))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleChat_BodyTooLarge(t *testing.T) {
	srv := newTestServer(t, &fakeVendor{content: "ok"})

	huge := fmt.Sprintf(`{"messages":[{"role":"user","content":"%s"}]}`,
		strings.Repeat("a", MaxRequestBodySize))
	resp := postAI(t, srv, huge)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, &fakeVendor{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, Version, body["version"])
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t, &fakeVendor{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, &fakeVendor{})

	// Burn through the burst allowance; eventually a 429 must appear.
	var limited bool
	for i := 0; i < defaultBurst*3; i++ {
		resp, err := http.Get(srv.URL + "/health")
		require.NoError(t, err)
		resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited, "expected the limiter to trip")
}

func TestStats(t *testing.T) {
	vendor := &fakeVendor{content: "ok"}
	s := NewServer(0, vendor)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/ai", "application/json",
		strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
	require.NoError(t, err)
	resp.Body.Close()

	stats := s.Stats()
	assert.Equal(t, int64(1), stats.TotalRequests)
	assert.Equal(t, int64(0), stats.VendorErrors)
}

func TestNewOpenAIVendor_RequiresKey(t *testing.T) {
	_, err := NewOpenAIVendor("", "", "")
	assert.ErrorIs(t, err, ErrNoVendorKey)

	v, err := NewOpenAIVendor("key", "", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, v.model)
}
