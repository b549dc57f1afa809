// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server implements the guide backend: a small HTTP server that
// validates chat requests and forwards them to the upstream LLM vendor.
//
// Endpoints:
//   - POST /api/ai  - chat completion (JSON or SSE stream)
//   - GET  /health  - health check
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultPort is the default port for the HTTP server.
	DefaultPort = 8787

	// MaxMessageCount is the maximum number of messages in a request.
	MaxMessageCount = 100

	// MaxRequestBodySize caps request bodies to prevent DoS (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024

	// MaxTokensLimit is the maximum value for max_tokens.
	MaxTokensLimit = 128000

	// Version is the server version.
	Version = "0.1.0"
)

// validRoles is the whitelist of acceptable message roles.
var validRoles = map[string]bool{
	"user":      true,
	"assistant": true,
	"system":    true,
}

// ============================================================================
// TYPES
// ============================================================================

// ChatMessage is one message in an incoming request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the POST /api/ai payload.
type ChatRequest struct {
	Messages         []ChatMessage `json:"messages"`
	Temperature      float64       `json:"temperature,omitempty"`
	MaxTokens        int           `json:"max_tokens,omitempty"`
	PresencePenalty  float64       `json:"presence_penalty,omitempty"`
	FrequencyPenalty float64       `json:"frequency_penalty,omitempty"`
	Stream           bool          `json:"stream,omitempty"`
}

// validate enforces the request limits.
func (r *ChatRequest) validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("messages cannot be empty")
	}
	if len(r.Messages) > MaxMessageCount {
		return fmt.Errorf("too many messages: %d (max %d)", len(r.Messages), MaxMessageCount)
	}
	for i, msg := range r.Messages {
		if !validRoles[msg.Role] {
			return fmt.Errorf("invalid role %q at message %d: must be one of user, assistant, system", msg.Role, i)
		}
	}
	if r.MaxTokens < 0 || r.MaxTokens > MaxTokensLimit {
		return fmt.Errorf("max_tokens out of range: %d", r.MaxTokens)
	}
	if r.Temperature < 0 || r.Temperature > 2 {
		return fmt.Errorf("temperature out of range: %g", r.Temperature)
	}
	return nil
}

// Stats is a snapshot of server usage counters.
type Stats struct {
	TotalRequests  int64     `json:"total_requests"`
	StreamRequests int64     `json:"stream_requests"`
	VendorErrors   int64     `json:"vendor_errors"`
	StartTime      time.Time `json:"start_time"`
}

// ============================================================================
// SERVER
// ============================================================================

// Server is the backend HTTP server.
type Server struct {
	port   int
	router *http.ServeMux
	server *http.Server

	vendor  Vendor
	limiter *ipLimiter

	totalRequests  atomic.Int64
	streamRequests atomic.Int64
	vendorErrors   atomic.Int64
	startTime      time.Time

	mu sync.RWMutex
}

// NewServer creates a server forwarding to vendor. A zero port uses
// DefaultPort.
func NewServer(port int, vendor Vendor) *Server {
	if port == 0 {
		port = DefaultPort
	}

	s := &Server{
		port:      port,
		router:    http.NewServeMux(),
		vendor:    vendor,
		limiter:   newIPLimiter(defaultRatePerSecond, defaultBurst),
		startTime: time.Now(),
	}
	s.setupRoutes()
	return s
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.port
}

// Handler returns the fully wrapped HTTP handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	return chainMiddleware(s.router,
		s.recoverMiddleware,
		s.loggingMiddleware,
		s.rateLimitMiddleware,
	)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("POST /api/ai", s.handleChat)
	s.router.HandleFunc("GET /health", s.handleHealth)
}

// Start runs the server until Shutdown or failure.
func (s *Server) Start() error {
	s.mu.Lock()
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // streaming responses have no write deadline
		IdleTimeout:  120 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	log.Printf("guide backend listening on :%d", s.port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Stats returns a snapshot of the usage counters.
func (s *Server) Stats() Stats {
	return Stats{
		TotalRequests:  s.totalRequests.Load(),
		StreamRequests: s.streamRequests.Load(),
		VendorErrors:   s.vendorErrors.Load(),
		StartTime:      s.startTime,
	}
}

// ============================================================================
// HANDLERS
// ============================================================================

// handleChat handles POST /api/ai.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	s.totalRequests.Add(1)

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(body) > MaxRequestBodySize {
		s.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	var req ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Stream {
		s.streamRequests.Add(1)
		s.handleStreamingChat(w, r, req)
		return
	}
	s.handleNonStreamingChat(w, r, req)
}

// handleNonStreamingChat forwards one completion and returns the
// OpenAI-shaped JSON body the TUI client expects.
func (s *Server) handleNonStreamingChat(w http.ResponseWriter, r *http.Request, req ChatRequest) {
	content, err := s.vendor.Complete(r.Context(), req)
	if err != nil {
		s.vendorErrors.Add(1)
		log.Printf("vendor error: %v", err)
		s.writeError(w, http.StatusInternalServerError, "upstream completion failed")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
}

// handleStreamingChat re-emits vendor deltas as the backend's own SSE
// frame shape: data: {"text": chunk}.
func (s *Server) handleStreamingChat(w http.ResponseWriter, r *http.Request, req ChatRequest) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	err := s.vendor.Stream(r.Context(), req, func(chunk string) {
		frame, err := json.Marshal(map[string]string{"text": chunk})
		if err != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", frame)
		flusher.Flush()
	})
	if err != nil {
		s.vendorErrors.Add(1)
		log.Printf("vendor stream error: %v", err)
		// Headers already went out; all we can do is end the stream.
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": Version,
		"uptime":  time.Since(s.startTime).String(),
	})
}

// ============================================================================
// RESPONSE HELPERS
// ============================================================================

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
