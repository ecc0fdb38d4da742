// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
)

// DefaultGamma is the compression exponent of the frequency warp.
const DefaultGamma = 2.0

// BinIndex returns the output bin that transform component k falls into, or
// -1 when the component is discarded (DC, or at or above Nyquist).
//
// The warp is floor((f_k / f_max)^(1/gamma) * bins) with f_max the Nyquist
// frequency, so low frequencies are spread over proportionally more bins.
func BinIndex(k, blockLen int, sampleRate, gamma float64, bins int) int {
	if k < 1 || blockLen <= 0 || bins <= 0 || sampleRate <= 0 {
		return -1
	}
	fk := float64(k) * sampleRate / float64(blockLen)
	fmax := sampleRate / 2
	if fk >= fmax {
		return -1
	}
	if gamma <= 0 {
		gamma = DefaultGamma
	}

	idx := int(math.Floor(math.Pow(fk/fmax, 1/gamma) * float64(bins)))
	if idx >= bins {
		idx = bins - 1
	}
	return idx
}

// BinMapper aggregates transform amplitudes into a fixed number of output
// bins. The component-to-bin table depends only on the block length and the
// sample rate, so it is cached and rebuilt when either changes.
type BinMapper struct {
	bins  int
	gamma float64

	blockLen   int
	sampleRate float64
	index      []int // index[k] is the output bin of component k, or -1.
}

// NewBinMapper returns a mapper producing exactly bins values per frame.
func NewBinMapper(bins int, gamma float64) *BinMapper {
	if gamma <= 0 {
		gamma = DefaultGamma
	}
	return &BinMapper{bins: bins, gamma: gamma}
}

// Bins returns the number of output bins.
func (m *BinMapper) Bins() int {
	return m.bins
}

// Gamma returns the warp exponent.
func (m *BinMapper) Gamma() float64 {
	return m.gamma
}

func (m *BinMapper) rebuild(blockLen int, sampleRate float64) {
	size := blockLen/2 + 1
	if cap(m.index) < size {
		m.index = make([]int, size)
	}
	m.index = m.index[:size]
	for k := range m.index {
		m.index[k] = BinIndex(k, blockLen, sampleRate, m.gamma, m.bins)
	}
	m.blockLen = blockLen
	m.sampleRate = sampleRate
}

// Map writes the per-bin maximum of amps into dst, growing it if needed, and
// returns it. amps holds one linear amplitude per component of a block of
// length blockLen. A bin that receives no component this frame is 0, which
// the level conversion routes to the silence floor.
func (m *BinMapper) Map(dst, amps []float64, blockLen int, sampleRate float64) []float64 {
	if cap(dst) < m.bins {
		dst = make([]float64, m.bins)
	}
	dst = dst[:m.bins]
	for i := range dst {
		dst[i] = 0
	}

	if blockLen != m.blockLen || sampleRate != m.sampleRate {
		m.rebuild(blockLen, sampleRate)
	}

	n := min(len(amps), len(m.index))
	for k := 1; k < n; k++ {
		idx := m.index[k]
		if idx < 0 {
			continue
		}
		if amps[k] > dst[idx] {
			dst[idx] = amps[k]
		}
	}
	return dst
}

// BinRange returns the frequency range [lo, hi) in Hz covered by output bin
// i. It is the inverse of the warp and is used for labelling.
func BinRange(i, bins int, sampleRate, gamma float64) (lo, hi float64) {
	if bins <= 0 || i < 0 || i >= bins {
		return 0, 0
	}
	if gamma <= 0 {
		gamma = DefaultGamma
	}
	fmax := sampleRate / 2
	lo = math.Pow(float64(i)/float64(bins), gamma) * fmax
	hi = math.Pow(float64(i+1)/float64(bins), gamma) * fmax
	return lo, hi
}
