// SPDX-License-Identifier: MIT
package tui

import "time"

// fpsWindow is the number of tick intervals averaged.
const fpsWindow = 100

// FPSTracker reports the average rate over the last fpsWindow ticks.
type FPSTracker struct {
	intervals [fpsWindow]time.Duration
	next      int
	count     int
	sum       time.Duration
	last      time.Time
}

// Tick records a tick at now.
func (f *FPSTracker) Tick(now time.Time) {
	if !f.last.IsZero() {
		d := now.Sub(f.last)
		f.sum += d - f.intervals[f.next]
		f.intervals[f.next] = d
		f.next = (f.next + 1) % fpsWindow
		if f.count < fpsWindow {
			f.count++
		}
	}
	f.last = now
}

// FPS returns ticks per second, or 0 before two ticks have been recorded.
func (f *FPSTracker) FPS() float64 {
	if f.count == 0 || f.sum <= 0 {
		return 0
	}
	return float64(f.count) / f.sum.Seconds()
}
