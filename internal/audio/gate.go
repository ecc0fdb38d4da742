// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"sync/atomic"
)

// Gate replaces blocks whose peak amplitude stays below a threshold with
// silence, so background hiss does not flicker on the display. The threshold
// is read on the audio thread and may be changed from any goroutine.
type Gate struct {
	enabled   atomic.Bool
	threshold atomic.Uint32 // float32 bits, full scale = 1.0
}

// NewGate returns a gate with the given threshold in [0, 1]. A zero threshold
// leaves the gate disabled.
func NewGate(threshold float64) *Gate {
	g := &Gate{}
	g.SetThreshold(threshold)
	g.enabled.Store(threshold > 0)
	return g
}

// Enable turns the gate on.
func (g *Gate) Enable() {
	g.enabled.Store(true)
}

// Disable turns the gate off.
func (g *Gate) Disable() {
	g.enabled.Store(false)
}

// Enabled reports whether the gate is on.
func (g *Gate) Enabled() bool {
	return g.enabled.Load()
}

// SetThreshold adjusts the gate threshold.
// The value is in the range of 0.0-1.0 where 0=always open, 1=always closed.
func (g *Gate) SetThreshold(threshold float64) {
	if threshold < 0.0 {
		threshold = 0.0
	}
	if threshold > 1.0 {
		threshold = 1.0
	}
	g.threshold.Store(math.Float32bits(float32(threshold)))
}

// Threshold returns the current threshold in [0, 1].
func (g *Gate) Threshold() float64 {
	return float64(math.Float32frombits(g.threshold.Load()))
}

// Open reports whether block should pass: the gate is disabled, or at least
// one sample reaches the threshold.
func (g *Gate) Open(block []float32) bool {
	if !g.enabled.Load() {
		return true
	}
	return PeakAmplitude(block) >= math.Float32frombits(g.threshold.Load())
}

// PeakAmplitude returns the largest absolute sample value in block.
func PeakAmplitude(block []float32) float32 {
	var peak float32
	for _, s := range block {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}
