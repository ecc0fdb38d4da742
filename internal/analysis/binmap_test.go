// SPDX-License-Identifier: MIT
package analysis

import (
	"testing"
)

func TestBinIndex(t *testing.T) {
	const (
		n    = 1024
		sr   = 44100.0
		bins = 64
	)

	tests := []struct {
		k    int
		want int
	}{
		{0, -1},     // DC
		{n / 2, -1}, // Nyquist
		{1, 2},      // floor(sqrt(2/1024)*64) = 2
		{21, 12},
		{22, 13},
		{23, 13},
		{24, 13},
		{25, 14},
		{n/2 - 1, bins - 1},
	}

	for _, tt := range tests {
		if got := BinIndex(tt.k, n, sr, DefaultGamma, bins); got != tt.want {
			t.Errorf("BinIndex(%d) = %d, want %d", tt.k, got, tt.want)
		}
	}
}

func TestBinIndexMonotonic(t *testing.T) {
	for _, gamma := range []float64{1, 2, 3} {
		prev := -1
		for k := 1; k < 2048; k++ {
			idx := BinIndex(k, 4096, 48000, gamma, 200)
			if idx < prev {
				t.Fatalf("gamma %g: bin decreased at k=%d (%d < %d)", gamma, k, idx, prev)
			}
			if idx < 0 || idx >= 200 {
				t.Fatalf("gamma %g: bin %d out of range at k=%d", gamma, idx, k)
			}
			prev = idx
		}
	}
}

func TestMapLength(t *testing.T) {
	m := NewBinMapper(64, DefaultGamma)
	for _, n := range []int{2, 8, 256, 1000, 1024, 8192} {
		amps := make([]float64, n/2+1)
		for i := range amps {
			amps[i] = 1
		}
		if got := len(m.Map(nil, amps, n, 44100)); got != 64 {
			t.Errorf("block %d: got %d bins, want 64", n, got)
		}
	}
}

func TestMapAggregatesMax(t *testing.T) {
	const n = 1024
	m := NewBinMapper(64, DefaultGamma)
	amps := make([]float64, n/2+1)
	amps[22] = 0.1
	amps[23] = 0.4
	amps[24] = 0.2
	amps[0] = 9   // DC must be ignored.
	amps[n/2] = 9 // Nyquist must be ignored.

	out := m.Map(nil, amps, n, 44100)
	if out[13] != 0.4 {
		t.Errorf("bin 13 = %g, want the group maximum 0.4", out[13])
	}
	for i, v := range out {
		if i != 13 && v != 0 {
			t.Errorf("bin %d = %g, want 0", i, v)
		}
	}
}

func TestMapLowBinsSilent(t *testing.T) {
	// With 1024 samples no component lands below bin 2 at 64 bins.
	const n = 1024
	amps := make([]float64, n/2+1)
	for i := range amps {
		amps[i] = 0.5
	}
	out := NewBinMapper(64, DefaultGamma).Map(nil, amps, n, 44100)
	if out[0] != 0 || out[1] != 0 {
		t.Errorf("bins 0, 1 = %g, %g; want silent", out[0], out[1])
	}
	if out[2] != 0.5 {
		t.Errorf("bin 2 = %g, want 0.5", out[2])
	}
}

func TestBinRangeContainsMappedFrequency(t *testing.T) {
	const (
		n    = 1024
		sr   = 44100.0
		bins = 64
	)
	for k := 1; k < n/2; k++ {
		idx := BinIndex(k, n, sr, DefaultGamma, bins)
		lo, hi := BinRange(idx, bins, sr, DefaultGamma)
		f := float64(k) * sr / n
		if f < lo-1e-9 || f >= hi+1e-9 {
			t.Fatalf("k=%d (%.1f Hz) mapped to bin %d covering [%.1f, %.1f)", k, f, idx, lo, hi)
		}
	}
}

func TestMapZeroAllocs(t *testing.T) {
	m := NewBinMapper(64, DefaultGamma)
	amps := make([]float64, 513)
	dst := m.Map(nil, amps, 1024, 44100)

	allocs := testing.AllocsPerRun(100, func() {
		dst = m.Map(dst, amps, 1024, 44100)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in Map, got %.1f", allocs)
	}
}
