// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// =============================================================================
// STREAMING CONSTANTS
// =============================================================================

// MaxChunkSize is the maximum allowed size for a single SSE event (64KB).
const MaxChunkSize = 64 * 1024

// =============================================================================
// STREAMING TYPES
// =============================================================================

// streamChunk is the backend's streaming frame payload: data: {"text": "..."}.
type streamChunk struct {
	Text string `json:"text"`
}

// StreamCallback receives each text chunk as it arrives.
type StreamCallback func(text string)

// StreamError is a failure during streaming that preserves any partial
// content received before the error.
type StreamError struct {
	Partial string
	Err     error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("stream error (partial content received: %d chars): %v", len(e.Partial), e.Err)
	}
	return fmt.Sprintf("stream error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// =============================================================================
// SSE READER
// =============================================================================

// SSEReader parses Server-Sent Events from a stream.
type SSEReader struct {
	reader *bufio.Reader
}

// NewSSEReader creates a new SSE reader from an io.Reader.
func NewSSEReader(r io.Reader) *SSEReader {
	return &SSEReader{reader: bufio.NewReader(r)}
}

// ReadEvent reads the next SSE event and returns its data payload.
// Returns io.EOF when the stream ends. Fields other than data: are
// ignored (id:, retry:, comment lines).
func (s *SSEReader) ReadEvent() ([]byte, error) {
	var dataLines [][]byte

	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				if len(dataLines) > 0 {
					return bytes.Join(dataLines, []byte("\n")), nil
				}
				return nil, io.EOF
			}
			return nil, err
		}

		line = bytes.TrimRight(line, "\r\n")

		// Empty line signals end of event.
		if len(line) == 0 {
			if len(dataLines) > 0 {
				return bytes.Join(dataLines, []byte("\n")), nil
			}
			continue
		}

		if bytes.HasPrefix(line, []byte("data:")) {
			data := bytes.TrimSpace(line[5:])
			if len(data) > MaxChunkSize {
				return nil, fmt.Errorf("chunk too large: %d bytes", len(data))
			}
			dataLines = append(dataLines, data)
		}
	}
}

// =============================================================================
// STREAMING COMPLETION
// =============================================================================

// Stream sends a streaming completion request, invoking onChunk for each
// text fragment, and returns the accumulated response text. Malformed
// frames are logged and skipped; the stream ends on data: [DONE] or EOF.
// Errors mid-stream return a *StreamError carrying the partial content.
// No retry is attempted.
func (c *Client) Stream(ctx context.Context, req Request, onChunk StreamCallback) (string, error) {
	req.Stream = true

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")

	start := time.Now()
	resp, err := c.streamer.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	logResponse(resp, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
		return "", backendError(resp.StatusCode, respBody)
	}

	var accumulated strings.Builder
	if err := processStream(ctx, resp.Body, func(text string) {
		accumulated.WriteString(text)
		onChunk(text)
	}); err != nil {
		return accumulated.String(), &StreamError{
			Partial: accumulated.String(),
			Err:     err,
		}
	}
	return accumulated.String(), nil
}

// processStream reads and processes the SSE stream until [DONE] or EOF.
func processStream(ctx context.Context, body io.Reader, onChunk StreamCallback) error {
	reader := NewSSEReader(body)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		data, err := reader.ReadEvent()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		if bytes.Equal(data, []byte("[DONE]")) {
			return nil
		}

		var chunk streamChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			// Skip malformed frames rather than abort the stream.
			log.Printf("skipping malformed stream chunk: %v", err)
			continue
		}

		if chunk.Text != "" {
			onChunk(chunk.Text)
		}
	}
}

// logResponse logs an API response with duration. Only status and timing
// are logged, never bodies.
func logResponse(resp *http.Response, duration time.Duration) {
	log.Printf("API Response: %d %s (%v)", resp.StatusCode, resp.Status, duration)
}
