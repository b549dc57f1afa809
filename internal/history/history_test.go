// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func TestSaveLoad(t *testing.T) {
	store := newTestStore(t)

	conv := &Conversation{
		Mode: "chat",
		Messages: []Message{
			NewMessage("user", "what projects use AI?"),
			NewMessage("assistant", "Several, for example AdventureSeek."),
		},
	}

	id, err := store.Save(conv)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated ID")
	}

	loaded, err := store.Load(id)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Messages) != 2 {
		t.Errorf("messages: %d", len(loaded.Messages))
	}
	if loaded.Messages[0].Content != "what projects use AI?" {
		t.Errorf("message 0: %q", loaded.Messages[0].Content)
	}
	if loaded.Mode != "chat" {
		t.Errorf("mode: %q", loaded.Mode)
	}
}

func TestSave_GeneratesSummary(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Save(&Conversation{
		Messages: []Message{NewMessage("user", "tell me about the\nsmart home hub")},
	})
	if err != nil {
		t.Fatal(err)
	}

	loaded, _ := store.Load(id)
	if strings.Contains(loaded.Summary, "\n") {
		t.Errorf("summary contains newline: %q", loaded.Summary)
	}
	if !strings.HasPrefix(loaded.Summary, "tell me about the smart home hub") {
		t.Errorf("summary: %q", loaded.Summary)
	}
}

func TestSave_EmptyConversationSummary(t *testing.T) {
	store := newTestStore(t)
	id, err := store.Save(&Conversation{})
	if err != nil {
		t.Fatal(err)
	}
	loaded, _ := store.Load(id)
	if loaded.Summary != "New conversation" {
		t.Errorf("summary: %q", loaded.Summary)
	}
}

func TestLoad_NotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Load("missing-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	store := newTestStore(t)

	first, _ := store.Save(&Conversation{Messages: []Message{NewMessage("user", "first")}})
	// Force distinct UpdatedAt values.
	time.Sleep(10 * time.Millisecond)
	second, _ := store.Save(&Conversation{Messages: []Message{NewMessage("user", "second")}})

	metas, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(metas))
	}
	if metas[0].ID != second || metas[1].ID != first {
		t.Errorf("order wrong: %+v", metas)
	}
	if metas[0].MessageCount != 1 {
		t.Errorf("message count: %d", metas[0].MessageCount)
	}
}

func TestList_SkipsCorruptFiles(t *testing.T) {
	store := newTestStore(t)
	store.Save(&Conversation{Messages: []Message{NewMessage("user", "ok")}})

	if err := os.WriteFile(filepath.Join(store.BaseDir, "bad.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	metas, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 1 {
		t.Errorf("corrupt file should be skipped, got %d entries", len(metas))
	}
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	id, _ := store.Save(&Conversation{Messages: []Message{NewMessage("user", "x")}})

	if err := store.Delete(id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Load(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete should be ErrNotFound, got %v", err)
	}
}

func TestEnforceLimit(t *testing.T) {
	store := newTestStore(t)
	store.MaxConversations = 2

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := store.Save(&Conversation{Messages: []Message{NewMessage("user", "m")}})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
		time.Sleep(10 * time.Millisecond)
	}

	metas, _ := store.List()
	if len(metas) != 2 {
		t.Fatalf("expected 2 after pruning, got %d", len(metas))
	}
	// The oldest must be gone.
	if _, err := store.Load(ids[0]); !errors.Is(err, ErrNotFound) {
		t.Errorf("oldest conversation should be pruned")
	}
}

func TestExport(t *testing.T) {
	store := newTestStore(t)
	id, _ := store.Save(&Conversation{
		Mode: "chat",
		Messages: []Message{
			NewMessage("user", "hello"),
			NewMessage("assistant", "hi there"),
		},
	})

	out := filepath.Join(t.TempDir(), "export.md")
	if err := store.Export(id, out); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{"## You", "hello", "## Guide", "hi there", "Mode: chat"} {
		if !strings.Contains(text, want) {
			t.Errorf("export missing %q:\n%s", want, text)
		}
	}
}

func TestExport_NotFound(t *testing.T) {
	store := newTestStore(t)
	err := store.Export("missing", filepath.Join(t.TempDir(), "x.md"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLoad_UniquePrefix(t *testing.T) {
	store := newTestStore(t)
	id, _ := store.Save(&Conversation{Messages: []Message{NewMessage("user", "x")}})

	short := id[:8]
	loaded, err := store.Load(short)
	if err != nil {
		t.Fatalf("prefix load failed: %v", err)
	}
	if loaded.ID != id {
		t.Errorf("resolved wrong conversation: %s", loaded.ID)
	}
}

func TestLoad_EmptyPrefixNotFound(t *testing.T) {
	store := newTestStore(t)
	store.Save(&Conversation{Messages: []Message{NewMessage("user", "x")}})
	if _, err := store.Load(""); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty id should be ErrNotFound, got %v", err)
	}
}
