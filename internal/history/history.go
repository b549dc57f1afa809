// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history persists chat conversations as JSON files so sessions
// can be listed, resumed, and exported.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/robera-dev/guide-tui/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

var ErrNotFound = errors.New("conversation not found")

// =============================================================================
// TYPES
// =============================================================================

// Conversation is a persisted chat session.
type Conversation struct {
	ID        string    `json:"id"`
	Summary   string    `json:"summary"`
	Mode      string    `json:"mode"` // chat, analyze, generate
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Messages  []Message `json:"messages"`
}

// Message is one persisted chat message.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Meta is the listing view of a conversation.
type Meta struct {
	ID           string    `json:"id"`
	Summary      string    `json:"summary"`
	Mode         string    `json:"mode"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// =============================================================================
// STORE
// =============================================================================

// DefaultMaxConversations caps stored sessions; oldest are pruned.
const DefaultMaxConversations = 100

// Store persists conversations under a directory, one JSON file each.
type Store struct {
	BaseDir          string
	MaxConversations int
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return &Store{
		BaseDir:          dir,
		MaxConversations: DefaultMaxConversations,
	}, nil
}

func (s *Store) filePath(id string) string {
	return filepath.Join(s.BaseDir, id+".json")
}

// Save persists a conversation and returns its ID, assigning one and a
// summary when missing. The write is atomic.
func (s *Store) Save(conv *Conversation) (string, error) {
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	if conv.Summary == "" {
		conv.Summary = summarize(conv)
	}
	conv.UpdatedAt = time.Now()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = conv.UpdatedAt
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode conversation: %w", err)
	}
	if err := util.AtomicWriteFile(s.filePath(conv.ID), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write conversation: %w", err)
	}

	if s.MaxConversations > 0 {
		s.enforceLimit()
	}
	return conv.ID, nil
}

// Load retrieves a conversation by ID. A unique ID prefix also works, so
// the short IDs shown by the session list resolve to their conversation.
func (s *Store) Load(id string) (*Conversation, error) {
	data, err := os.ReadFile(s.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			if full, ok := s.resolvePrefix(id); ok {
				return s.Load(full)
			}
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read conversation: %w", err)
	}

	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("corrupt conversation file: %w", err)
	}
	return &conv, nil
}

// resolvePrefix finds the stored ID that id is a unique prefix of.
func (s *Store) resolvePrefix(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		return "", false
	}

	var match string
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".json")
		if !strings.HasSuffix(entry.Name(), ".json") || !strings.HasPrefix(name, id) {
			continue
		}
		if match != "" {
			// Ambiguous prefix.
			return "", false
		}
		match = name
	}
	return match, match != ""
}

// List returns all conversations, most recently updated first.
// Corrupted files are skipped.
func (s *Store) List() ([]Meta, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	var metas []Meta
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		conv, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		metas = append(metas, Meta{
			ID:           conv.ID,
			Summary:      conv.Summary,
			Mode:         conv.Mode,
			UpdatedAt:    conv.UpdatedAt,
			MessageCount: len(conv.Messages),
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}

// Delete removes a conversation by ID.
func (s *Store) Delete(id string) error {
	if err := os.Remove(s.filePath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}

// Export writes a conversation as markdown to the given path.
func (s *Store) Export(id, path string) error {
	conv, err := s.Load(id)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", conv.Summary)
	fmt.Fprintf(&b, "Mode: %s  \nStarted: %s\n\n", conv.Mode, conv.CreatedAt.Format(time.RFC3339))
	for _, msg := range conv.Messages {
		who := "You"
		if msg.Role == "assistant" {
			who = "Guide"
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", who, msg.Content)
	}

	if err := util.AtomicWriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to export conversation: %w", err)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// summarize derives a summary from the first user message.
func summarize(conv *Conversation) string {
	for _, msg := range conv.Messages {
		if msg.Role == "user" && msg.Content != "" {
			content := strings.ReplaceAll(msg.Content, "\n", " ")
			content = strings.ReplaceAll(content, "\r", "")
			return util.TruncateRunes(content, 50)
		}
	}
	return "New conversation"
}

// enforceLimit prunes the oldest conversations beyond the cap.
func (s *Store) enforceLimit() {
	metas, err := s.List()
	if err != nil || len(metas) <= s.MaxConversations {
		return
	}
	// List is newest-first; everything past the cap goes.
	for _, meta := range metas[s.MaxConversations:] {
		_ = s.Delete(meta.ID)
	}
}

// NewMessage builds a message with a fresh ID and timestamp.
func NewMessage(role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}
