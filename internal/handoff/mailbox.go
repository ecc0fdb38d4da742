// SPDX-License-Identifier: MIT

// Package handoff is the single-slot boundary between the audio callback and
// the analysis tick. The producer overwrites the slot; the consumer copies
// whatever is there on its own cadence. Nothing queues and nothing waits: an
// unconsumed block is simply replaced by the next one.
package handoff

import (
	"sync"
	"time"
)

// Status reports the outcome of a TryLatest call.
type Status int

const (
	// Delivered means a block was copied out.
	Delivered Status = iota
	// Empty means nothing has been published since creation or the last Clear.
	Empty
	// Busy means the slot was held by the producer; the caller skips this tick.
	Busy
)

func (s Status) String() string {
	switch s {
	case Delivered:
		return "delivered"
	case Empty:
		return "empty"
	case Busy:
		return "busy"
	default:
		return "unknown"
	}
}

// Block is a copy of the slot contents.
type Block struct {
	Samples  []float32
	Captured time.Time
	Seq      uint64 // Seq increments on every Publish; equal values mean a re-read.
}

// Mailbox holds the most recent sample block. The lock is held only while a
// block is copied in or out.
type Mailbox struct {
	mu       sync.Mutex
	buf      []float32
	captured time.Time
	seq      uint64
	full     bool
}

// New returns a mailbox with room for blocks of up to capacity samples.
// Longer blocks are accepted and grow the slot once.
func New(capacity int) *Mailbox {
	return &Mailbox{buf: make([]float32, 0, capacity)}
}

// Publish copies block into the slot, replacing the previous contents. It is
// called from the audio callback and does not allocate once the slot has
// grown to the device block size.
func (m *Mailbox) Publish(block []float32, captured time.Time) {
	m.mu.Lock()
	m.buf = append(m.buf[:0], block...)
	m.captured = captured
	m.seq++
	m.full = true
	m.mu.Unlock()
}

// TryLatest copies the current block into dst (grown if needed) without
// waiting. If the producer holds the slot it returns Busy; if nothing has been
// published it returns Empty. The slot is left intact, so a later call may
// return the same block again with the same Seq.
func (m *Mailbox) TryLatest(dst []float32) (Block, Status) {
	if !m.mu.TryLock() {
		return Block{Samples: dst[:0]}, Busy
	}
	defer m.mu.Unlock()

	if !m.full {
		return Block{Samples: dst[:0]}, Empty
	}
	dst = append(dst[:0], m.buf...)
	return Block{Samples: dst, Captured: m.captured, Seq: m.seq}, Delivered
}

// Clear empties the slot. It is used when the capture source changes so a
// block from the old device is never analyzed against the new configuration.
func (m *Mailbox) Clear() {
	m.mu.Lock()
	m.buf = m.buf[:0]
	m.full = false
	m.mu.Unlock()
}

// Seq returns the number of blocks published so far.
func (m *Mailbox) Seq() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seq
}
