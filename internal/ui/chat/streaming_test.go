// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestStreamingBuffer_BatchSizeFlush(t *testing.T) {
	sb := NewStreamingBufferWithConfig(3, 30)

	sb.Write("a")
	sb.Write("b")
	if content, ok := sb.Flush(); ok {
		t.Errorf("should not flush below batch size, got %q", content)
	}

	sb.Write("c")
	content, ok := sb.Flush()
	if !ok {
		t.Fatal("batch size reached, expected a flush")
	}
	if content != "abc" {
		t.Errorf("content = %q", content)
	}
	if sb.Pending() != 0 {
		t.Errorf("pending after flush: %d", sb.Pending())
	}
}

func TestStreamingBuffer_TimeBasedFlush(t *testing.T) {
	sb := NewStreamingBufferWithConfig(1000, 30)

	sb.Write("slow token")
	if _, ok := sb.Flush(); ok {
		t.Error("should not flush immediately")
	}

	time.Sleep(40 * time.Millisecond)
	content, ok := sb.Flush()
	if !ok {
		t.Fatal("time threshold passed, expected a flush")
	}
	if content != "slow token" {
		t.Errorf("content = %q", content)
	}
}

func TestStreamingBuffer_EmptyNeverFlushes(t *testing.T) {
	sb := NewStreamingBuffer()
	time.Sleep(40 * time.Millisecond)
	if sb.ShouldFlush() {
		t.Error("empty buffer should never report flushable")
	}
	if _, ok := sb.ForceFlush(); ok {
		t.Error("force flush of empty buffer should return false")
	}
}

func TestStreamingBuffer_ForceFlush(t *testing.T) {
	sb := NewStreamingBufferWithConfig(1000, 30)
	sb.Write("tail")

	content, ok := sb.ForceFlush()
	if !ok || content != "tail" {
		t.Errorf("force flush = %q, %v", content, ok)
	}
}

func TestStreamingBuffer_Reset(t *testing.T) {
	sb := NewStreamingBufferWithConfig(2, 30)
	sb.Write("discard")
	sb.Reset()

	if sb.Pending() != 0 {
		t.Errorf("pending after reset: %d", sb.Pending())
	}
	if _, ok := sb.ForceFlush(); ok {
		t.Error("reset buffer should be empty")
	}
}

func TestStreamingBuffer_DefaultsOnBadConfig(t *testing.T) {
	sb := NewStreamingBufferWithConfig(-1, 500)
	if sb.batchSize != 15 || sb.maxFPS != 30 {
		t.Errorf("bad config should fall back to defaults: %d/%d", sb.batchSize, sb.maxFPS)
	}
}

func TestStreamingBuffer_ConcurrentWrites(t *testing.T) {
	sb := NewStreamingBufferWithConfig(100000, 1)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				sb.Write("x")
			}
		}()
	}
	wg.Wait()

	content, ok := sb.ForceFlush()
	if !ok {
		t.Fatal("expected buffered content")
	}
	if len(content) != 1000 || strings.Trim(content, "x") != "" {
		t.Errorf("lost writes: got %d bytes", len(content))
	}
}
