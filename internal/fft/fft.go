// SPDX-License-Identifier: MIT

// Package fft wraps the forward real-to-complex transform used by the
// analysis engine. A Transform keeps its plan and output buffer sized from a
// single block length, so input and output can never disagree.
package fft

import (
	"fmt"
	"math/cmplx"
	"strings"

	godsp "github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Backend selects the transform implementation.
type Backend int

const (
	// Gonum uses gonum's FFTPACK port with a plan cached per block length.
	Gonum Backend = iota
	// GoDSP uses mjibson/go-dsp, which computes the full complex spectrum
	// and is truncated to the independent half.
	GoDSP
)

func (b Backend) String() string {
	switch b {
	case Gonum:
		return "gonum"
	case GoDSP:
		return "godsp"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// ParseBackend converts a backend name (case-insensitive) to a Backend.
// Unknown names return Gonum and an error.
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "gonum":
		return Gonum, nil
	case "godsp", "go-dsp":
		return GoDSP, nil
	default:
		return Gonum, fmt.Errorf("unknown fft backend: '%s'", name)
	}
}

// Transform computes N/2+1 complex components of a real block of length N.
// It is not safe for concurrent use; the analysis goroutine owns it.
type Transform struct {
	backend Backend
	n       int
	plan    *fourier.FFT
	coeffs  []complex128
}

// NewTransform returns a Transform pre-sized for blocks of length n. Other
// lengths are accepted later at the cost of a re-plan.
func NewTransform(backend Backend, n int) *Transform {
	t := &Transform{backend: backend}
	if n > 0 {
		t.resize(n)
	}
	return t
}

// Backend returns the implementation in use.
func (t *Transform) Backend() Backend {
	return t.backend
}

// Len returns the block length the transform is currently planned for.
func (t *Transform) Len() int {
	return t.n
}

func (t *Transform) resize(n int) {
	t.n = n
	t.coeffs = make([]complex128, n/2+1)
	if t.backend == Gonum {
		t.plan = fourier.NewFFT(n)
	}
}

// Coefficients transforms seq and returns its N/2+1 components ordered by
// increasing frequency. The returned slice is owned by the Transform and is
// overwritten by the next call. seq must not be empty; callers skip empty
// frames before reaching the transform.
func (t *Transform) Coefficients(seq []float64) []complex128 {
	if len(seq) != t.n {
		t.resize(len(seq))
	}

	switch t.backend {
	case GoDSP:
		full := godsp.FFTReal(seq)
		copy(t.coeffs, full[:len(t.coeffs)])
	default:
		t.plan.Coefficients(t.coeffs, seq)
	}
	return t.coeffs
}

// Amplitudes writes the calibrated linear amplitude |X_k| / n of every
// component into dst, growing it if needed, and returns it.
func Amplitudes(dst []float64, coeffs []complex128, n int) []float64 {
	if cap(dst) < len(coeffs) {
		dst = make([]float64, len(coeffs))
	}
	dst = dst[:len(coeffs)]

	scale := 1 / float64(n)
	for i, c := range coeffs {
		dst[i] = cmplx.Abs(c) * scale
	}
	return dst
}

// BinFrequency returns the frequency in Hz of component k for a block of
// length n captured at sampleRate.
func BinFrequency(k, n int, sampleRate float64) float64 {
	if n <= 0 {
		return 0
	}
	return float64(k) * sampleRate / float64(n)
}
