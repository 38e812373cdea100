// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestStreamingBufferBatchFlush(t *testing.T) {
	sb := NewStreamingBufferWithConfig(3, 30)

	sb.Write("a")
	sb.Write("b")
	if _, ok := sb.Flush(); ok {
		t.Error("should not flush below batch size before the time threshold")
	}

	sb.Write("c")
	content, ok := sb.Flush()
	if !ok {
		t.Fatal("batch size reached, should flush")
	}
	if content != "abc" {
		t.Errorf("content = %q, want %q", content, "abc")
	}
	if sb.Pending() != 0 {
		t.Errorf("pending = %d after flush", sb.Pending())
	}
}

func TestStreamingBufferTimeFlush(t *testing.T) {
	sb := NewStreamingBufferWithConfig(100, 60)

	sb.Write("slow")
	time.Sleep(20 * time.Millisecond)

	content, ok := sb.Flush()
	if !ok {
		t.Fatal("time threshold passed, should flush")
	}
	if content != "slow" {
		t.Errorf("content = %q", content)
	}
}

func TestStreamingBufferEmptyNeverFlushes(t *testing.T) {
	sb := NewStreamingBuffer()
	time.Sleep(40 * time.Millisecond)
	if _, ok := sb.Flush(); ok {
		t.Error("empty buffer must not flush")
	}
	if _, ok := sb.ForceFlush(); ok {
		t.Error("empty buffer must not force-flush")
	}
}

func TestStreamingBufferForceFlush(t *testing.T) {
	sb := NewStreamingBufferWithConfig(100, 1)

	sb.Write("tail")
	content, ok := sb.ForceFlush()
	if !ok || content != "tail" {
		t.Errorf("ForceFlush = (%q, %v)", content, ok)
	}
}

func TestStreamingBufferReset(t *testing.T) {
	sb := NewStreamingBuffer()
	sb.Write("discard me")
	sb.Reset()
	if _, ok := sb.ForceFlush(); ok {
		t.Error("reset should discard buffered tokens")
	}
}

func TestStreamingBufferConcurrentWrites(t *testing.T) {
	sb := NewStreamingBuffer()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				sb.Write(fmt.Sprintf("%d", n))
			}
		}(i)
	}
	wg.Wait()

	content, ok := sb.ForceFlush()
	if !ok {
		t.Fatal("expected buffered content")
	}
	if len(content) != 1000 {
		t.Errorf("len = %d, want 1000", len(content))
	}
}

func TestStreamingBufferConfigClamping(t *testing.T) {
	sb := NewStreamingBufferWithConfig(-1, 1000)
	if sb.batchSize != 15 {
		t.Errorf("batchSize = %d, want default 15", sb.batchSize)
	}
	if sb.minFlushWait != time.Duration(1000/30)*time.Millisecond {
		t.Errorf("minFlushWait = %v, want 30fps default", sb.minFlushWait)
	}
}
