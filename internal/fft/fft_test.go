// SPDX-License-Identifier: MIT
package fft

import (
	"math"
	"testing"

	"audiolyzer/pkg/utils"
)

const (
	testFFTSize    = 1024
	testSampleRate = 44100
)

func sineBlock(freq float64) []float64 {
	wave := utils.GenerateSineWave(testFFTSize, testSampleRate, freq, 1)
	seq := make([]float64, len(wave))
	for i, v := range wave {
		seq[i] = float64(v)
	}
	return seq
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in      string
		want    Backend
		wantErr bool
	}{
		{"", Gonum, false},
		{"gonum", Gonum, false},
		{"GoDSP", GoDSP, false},
		{"go-dsp", GoDSP, false},
		{"fftw", Gonum, true},
	}

	for _, tt := range tests {
		got, err := ParseBackend(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseBackend(%q) = %v, %v; want %v, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestCoefficientsLength(t *testing.T) {
	for _, backend := range []Backend{Gonum, GoDSP} {
		tr := NewTransform(backend, testFFTSize)
		if got := len(tr.Coefficients(sineBlock(440))); got != testFFTSize/2+1 {
			t.Errorf("%s: got %d coefficients, want %d", backend, got, testFFTSize/2+1)
		}

		// A different length re-plans instead of panicking.
		if got := len(tr.Coefficients(make([]float64, 256))); got != 129 {
			t.Errorf("%s: got %d coefficients after resize, want 129", backend, got)
		}
		if tr.Len() != 256 {
			t.Errorf("%s: Len() = %d after resize, want 256", backend, tr.Len())
		}
	}
}

func TestSinePeak(t *testing.T) {
	tests := []struct {
		name string
		freq float64
	}{
		{"A4", 440},
		{"1kHz", 1000},
		{"5kHz", 5000},
	}

	for _, backend := range []Backend{Gonum, GoDSP} {
		for _, tt := range tests {
			t.Run(backend.String()+"/"+tt.name, func(t *testing.T) {
				tr := NewTransform(backend, testFFTSize)
				amps := Amplitudes(nil, tr.Coefficients(sineBlock(tt.freq)), testFFTSize)

				want := int(math.Round(tt.freq * testFFTSize / testSampleRate))
				got := utils.FindPeakBin(amps, 1, len(amps)-1)
				if got < want-1 || got > want+1 {
					t.Errorf("peak at component %d (%.1f Hz), want %d±1", got, BinFrequency(got, testFFTSize, testSampleRate), want)
				}
			})
		}
	}
}

func TestBackendsAgree(t *testing.T) {
	seq := make([]float64, testFFTSize)
	for i, v := range utils.GenerateComplexWave(testFFTSize, testSampleRate) {
		seq[i] = float64(v)
	}

	a := Amplitudes(nil, NewTransform(Gonum, testFFTSize).Coefficients(seq), testFFTSize)
	b := Amplitudes(nil, NewTransform(GoDSP, testFFTSize).Coefficients(seq), testFFTSize)
	for k := range a {
		if math.Abs(a[k]-b[k]) > 1e-9 {
			t.Fatalf("component %d: gonum %g, godsp %g", k, a[k], b[k])
		}
	}
}

func TestAmplitudeCalibration(t *testing.T) {
	// A full-scale sine exactly on a component has |X_k|/N = 0.5.
	freq := BinFrequency(32, testFFTSize, testSampleRate)
	tr := NewTransform(Gonum, testFFTSize)
	amps := Amplitudes(nil, tr.Coefficients(sineBlock(freq)), testFFTSize)
	if math.Abs(amps[32]-0.5) > 1e-3 {
		t.Errorf("amplitude at component 32 = %f, want 0.5", amps[32])
	}
}

func TestCoefficientsZeroAllocs(t *testing.T) {
	tr := NewTransform(Gonum, testFFTSize)
	seq := sineBlock(440)
	amps := make([]float64, testFFTSize/2+1)

	// Warm-up call so plan construction is not counted.
	tr.Coefficients(seq)
	allocs := testing.AllocsPerRun(100, func() {
		amps = Amplitudes(amps, tr.Coefficients(seq), testFFTSize)
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations in the transform hot path, got %.1f", allocs)
	}
}

func TestBinFrequencyZeroAllocs(t *testing.T) {
	allocs := testing.AllocsPerRun(100, func() {
		_ = BinFrequency(0, testFFTSize, testSampleRate)
		_ = BinFrequency(10, testFFTSize, testSampleRate)
		_ = BinFrequency(testFFTSize/2, testFFTSize, testSampleRate)
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations in BinFrequency, got %.1f", allocs)
	}
	if got := BinFrequency(testFFTSize/2, testFFTSize, testSampleRate); got != testSampleRate/2 {
		t.Errorf("BinFrequency(N/2) = %f, want Nyquist", got)
	}
}

func BenchmarkCoefficients(b *testing.B) {
	seq := make([]float64, testFFTSize)
	for i, v := range utils.GenerateComplexWave(testFFTSize, testSampleRate) {
		seq[i] = float64(v)
	}

	for _, backend := range []Backend{Gonum, GoDSP} {
		b.Run(backend.String(), func(b *testing.B) {
			tr := NewTransform(backend, testFFTSize)
			b.ReportAllocs()
			for b.Loop() {
				tr.Coefficients(seq)
			}
		})
	}
}
