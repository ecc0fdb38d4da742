// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
)

// EffectiveSmoothing converts a smoothing base s, defined per second, into the
// per-block factor s^(1/R), where R = sampleRate/blockLen is the number of
// blocks per second. Decay speed then does not depend on the block size.
// Invalid block lengths or rates return s unchanged.
func EffectiveSmoothing(s float64, blockLen int, sampleRate float64) float64 {
	if blockLen <= 0 || sampleRate <= 0 {
		return s
	}
	r := sampleRate / float64(blockLen)
	return math.Pow(s, 1/r)
}

// Smoother holds the previous value of every output bin and blends each new
// frame into it with an exponential moving average. Bins are independent.
type Smoother struct {
	history    []float64
	floor      float64
	fastAttack bool
}

// NewSmoother returns a smoother for bins values whose history starts at
// floor. With fastAttack, rising values replace the history immediately and
// only falling values are blended.
func NewSmoother(bins int, floor float64, fastAttack bool) *Smoother {
	s := &Smoother{
		history:    make([]float64, bins),
		floor:      floor,
		fastAttack: fastAttack,
	}
	s.Reset()
	return s
}

// Len returns the number of bins.
func (s *Smoother) Len() int {
	return len(s.history)
}

// Reset returns every bin to the floor.
func (s *Smoother) Reset() {
	for i := range s.history {
		s.history[i] = s.floor
	}
}

// Smooth blends raw into the history with factor (prev*factor +
// raw*(1-factor)) and overwrites raw with the result. raw must have Len
// elements.
func (s *Smoother) Smooth(raw []float64, factor float64) {
	for i, v := range raw {
		prev := s.history[i]
		if !s.fastAttack || v < prev {
			v = prev*factor + v*(1-factor)
		}
		s.history[i] = v
		raw[i] = v
	}
}

// Values returns the stored history. The slice is owned by the Smoother.
func (s *Smoother) Values() []float64 {
	return s.history
}
