// SPDX-License-Identifier: MIT
package transport

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"audiolyzer/internal/analysis"
)

type capturedLog struct {
	lines []string
}

func (c *capturedLog) logf(format string, v ...any) {
	c.lines = append(c.lines, fmt.Sprintf(format, v...))
}

func newTestTransport(clock *time.Time) (*LoggingTransport, *capturedLog) {
	out := &capturedLog{}
	lt := NewLoggingTransport(time.Second, 44100, analysis.DefaultGamma)
	lt.now = func() time.Time { return *clock }
	lt.logf = out.logf
	return lt, out
}

func TestLoggingTransportRateLimit(t *testing.T) {
	clock := time.Unix(1000, 0)
	lt, out := newTestTransport(&clock)

	levels := make([]float64, 64)
	levels[13] = 0.9
	frame := analysis.Frame{Levels: levels, Window: analysis.Hann, BlockLen: 1024}

	for range 30 {
		if err := lt.WriteFrame(frame); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
		clock = clock.Add(16 * time.Millisecond)
	}
	if len(out.lines) != 1 {
		t.Fatalf("got %d lines within one interval, want 1", len(out.lines))
	}

	clock = clock.Add(time.Second)
	lt.WriteFrame(frame)
	if len(out.lines) != 2 {
		t.Fatalf("got %d lines after the interval, want 2", len(out.lines))
	}
	if lt.Frames() != 31 {
		t.Errorf("Frames() = %d, want 31", lt.Frames())
	}

	line := out.lines[1]
	for _, want := range []string{"peak bin 13/64", "910-1055 Hz", "level 0.90", "window hann", "fps"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}

func TestLoggingTransportSilence(t *testing.T) {
	clock := time.Unix(0, 0)
	lt, out := newTestTransport(&clock)

	lt.WriteFrame(analysis.Frame{Levels: make([]float64, 64), Window: analysis.Nuttall, BlockLen: 512})
	if len(out.lines) != 1 || !strings.Contains(out.lines[0], "silent (window nuttall, block 512") {
		t.Errorf("lines = %q", out.lines)
	}
}

func TestLoggingTransportClose(t *testing.T) {
	clock := time.Unix(0, 0)
	lt, _ := newTestTransport(&clock)
	if err := lt.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := lt.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := lt.WriteFrame(analysis.Frame{}); err == nil {
		t.Error("WriteFrame after Close succeeded")
	}
}
