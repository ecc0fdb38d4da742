// SPDX-License-Identifier: MIT
package handoff

import (
	"sync"
	"testing"
	"time"
)

func TestEmptyBeforePublish(t *testing.T) {
	m := New(16)
	blk, status := m.TryLatest(nil)
	if status != Empty {
		t.Fatalf("status = %v, want empty", status)
	}
	if len(blk.Samples) != 0 {
		t.Errorf("got %d samples from an empty mailbox", len(blk.Samples))
	}
}

func TestLatestOverwrites(t *testing.T) {
	m := New(4)
	now := time.Now()
	m.Publish([]float32{1, 2, 3, 4}, now)
	m.Publish([]float32{5, 6, 7}, now.Add(time.Millisecond))

	blk, status := m.TryLatest(make([]float32, 0, 4))
	if status != Delivered {
		t.Fatalf("status = %v, want delivered", status)
	}
	want := []float32{5, 6, 7}
	if len(blk.Samples) != len(want) {
		t.Fatalf("got %v, want %v", blk.Samples, want)
	}
	for i := range want {
		if blk.Samples[i] != want[i] {
			t.Fatalf("got %v, want %v", blk.Samples, want)
		}
	}
	if blk.Seq != 2 {
		t.Errorf("Seq = %d, want 2", blk.Seq)
	}
	if !blk.Captured.Equal(now.Add(time.Millisecond)) {
		t.Errorf("Captured = %v, want the second publish time", blk.Captured)
	}

	// Reading does not consume the slot.
	again, status := m.TryLatest(blk.Samples)
	if status != Delivered || again.Seq != blk.Seq {
		t.Errorf("second read = %v seq %d, want delivered seq %d", status, again.Seq, blk.Seq)
	}
}

func TestCopyIsPrivate(t *testing.T) {
	m := New(3)
	src := []float32{1, 2, 3}
	m.Publish(src, time.Now())
	src[0] = 99

	blk, _ := m.TryLatest(nil)
	if blk.Samples[0] != 1 {
		t.Errorf("slot aliases the producer buffer: got %f", blk.Samples[0])
	}
	blk.Samples[1] = 42
	again, _ := m.TryLatest(nil)
	if again.Samples[1] != 2 {
		t.Errorf("slot aliases the consumer buffer: got %f", again.Samples[1])
	}
}

func TestBusyWhileHeld(t *testing.T) {
	m := New(4)
	m.Publish([]float32{1}, time.Now())

	m.mu.Lock()
	_, status := m.TryLatest(nil)
	m.mu.Unlock()
	if status != Busy {
		t.Errorf("status = %v, want busy", status)
	}

	if _, status = m.TryLatest(nil); status != Delivered {
		t.Errorf("status after release = %v, want delivered", status)
	}
}

func TestClear(t *testing.T) {
	m := New(4)
	m.Publish([]float32{1, 2}, time.Now())
	m.Clear()
	if _, status := m.TryLatest(nil); status != Empty {
		t.Errorf("status after Clear = %v, want empty", status)
	}
	if m.Seq() != 1 {
		t.Errorf("Clear reset the sequence: %d", m.Seq())
	}
}

func TestConcurrentPublish(t *testing.T) {
	m := New(256)
	block := make([]float32, 256)
	stop := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				m.Publish(block, time.Now())
			}
		}
	}()

	dst := make([]float32, 0, 256)
	for range 1000 {
		blk, status := m.TryLatest(dst)
		if status == Delivered && len(blk.Samples) != 256 {
			t.Errorf("torn read: %d samples", len(blk.Samples))
		}
	}
	close(stop)
	wg.Wait()
}

func TestPublishZeroAllocs(t *testing.T) {
	m := New(1024)
	block := make([]float32, 1024)
	dst := make([]float32, 0, 1024)
	now := time.Now()

	allocs := testing.AllocsPerRun(100, func() {
		m.Publish(block, now)
		m.TryLatest(dst)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in the handoff hot path, got %.1f", allocs)
	}
}

func BenchmarkPublish(b *testing.B) {
	m := New(1024)
	block := make([]float32, 1024)
	now := time.Now()
	b.ReportAllocs()
	for b.Loop() {
		m.Publish(block, now)
	}
}
