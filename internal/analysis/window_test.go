// SPDX-License-Identifier: MIT
package analysis

import (
	"testing"
)

func TestWindowCoefficientsRange(t *testing.T) {
	sizes := []int{2, 3, 16, 1000, 1024}

	for _, kind := range WindowFuncs() {
		for _, n := range sizes {
			coeffs := WindowCoefficients(nil, kind, n)
			if len(coeffs) != n {
				t.Fatalf("%v/%d: got %d coefficients", kind, n, len(coeffs))
			}
			for i, c := range coeffs {
				if c < 0 || c > 1 {
					t.Fatalf("%v/%d: coefficient %d = %g outside [0, 1]", kind, n, i, c)
				}
			}

			// Hamming does not reach zero at the edges (0.08).
			const edge = 0.1
			if coeffs[0] > edge || coeffs[n-1] > edge {
				t.Errorf("%v/%d: edges %g, %g not near 0", kind, n, coeffs[0], coeffs[n-1])
			}
		}
	}
}

func TestWindowCoefficientsPeak(t *testing.T) {
	for _, kind := range WindowFuncs() {
		coeffs := WindowCoefficients(nil, kind, 1025)
		if mid := coeffs[512]; mid < 0.99 {
			t.Errorf("%v: centre coefficient %g, want ~1", kind, mid)
		}
	}
}

func TestWindowCoefficientsDegenerate(t *testing.T) {
	for _, kind := range WindowFuncs() {
		if got := WindowCoefficients(nil, kind, 0); len(got) != 0 {
			t.Errorf("%v: n=0 gave %v", kind, got)
		}
		got := WindowCoefficients(nil, kind, 1)
		if len(got) != 1 || got[0] != 1 {
			t.Errorf("%v: n=1 gave %v, want [1]", kind, got)
		}
	}
}

func TestWindowCoefficientsReuse(t *testing.T) {
	buf := make([]float64, 0, 64)
	out := WindowCoefficients(buf, Hann, 64)
	if &out[0] != &buf[:1][0] {
		t.Error("WindowCoefficients reallocated a buffer with enough capacity")
	}
}

func TestParseWindowFunc(t *testing.T) {
	tests := []struct {
		in      string
		want    WindowFunc
		wantErr bool
	}{
		{"hann", Hann, false},
		{"Hanning", Hann, false},
		{"HAMMING", Hamming, false},
		{"blackman", Blackman, false},
		{" nuttall ", Nuttall, false},
		{"", Hann, false},
		{"kaiser", Hann, true},
	}

	for _, tt := range tests {
		got, err := ParseWindowFunc(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseWindowFunc(%q) = %v, %v; want %v, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestWindowFuncCycle(t *testing.T) {
	w := Hann
	want := []WindowFunc{Hamming, Blackman, Nuttall, Hann}
	for _, next := range want {
		w = w.Next()
		if w != next {
			t.Fatalf("Next() = %v, want %v", w, next)
		}
	}
	if WindowFunc(42).Next() != Hann {
		t.Error("invalid window should cycle back to Hann")
	}
	for _, w := range WindowFuncs() {
		if parsed, err := ParseWindowFunc(w.String()); err != nil || parsed != w {
			t.Errorf("String/Parse mismatch for %v", w)
		}
	}
}
