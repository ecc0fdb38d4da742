// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/dsp/window"
)

// WindowFunc selects the taper applied to a block before the transform. All
// supported kinds are generalized-cosine windows.
type WindowFunc int

// Enum for available window functions, in cycling order.
const (
	Hann WindowFunc = iota
	Hamming
	Blackman
	Nuttall

	numWindowFuncs
)

var windowNames = [numWindowFuncs]string{
	Hann:     "hann",
	Hamming:  "hamming",
	Blackman: "blackman",
	Nuttall:  "nuttall",
}

// String returns the lower-case name of the window function.
func (w WindowFunc) String() string {
	if !w.Valid() {
		return fmt.Sprintf("WindowFunc(%d)", int(w))
	}
	return windowNames[w]
}

// Valid reports whether w is one of the supported window functions.
func (w WindowFunc) Valid() bool {
	return w >= 0 && w < numWindowFuncs
}

// Next returns the window function that follows w, wrapping after Nuttall.
func (w WindowFunc) Next() WindowFunc {
	if !w.Valid() {
		return Hann
	}
	return (w + 1) % numWindowFuncs
}

// WindowFuncs returns every supported window function in cycling order.
func WindowFuncs() []WindowFunc {
	out := make([]WindowFunc, 0, numWindowFuncs)
	for w := Hann; w < numWindowFuncs; w++ {
		out = append(out, w)
	}
	return out
}

// ParseWindowFunc converts a string name (case-insensitive) to a WindowFunc
// enum, returns a known default (Hann) and an error if the name is unknown.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "blackman":
		return Blackman, nil
	case "nuttall":
		return Nuttall, nil
	default:
		return Hann, fmt.Errorf("unknown window function: '%s'", name)
	}
}

// WindowCoefficients writes the n coefficients of kind into dst, growing it if
// needed, and returns it. Every coefficient is in [0, 1]. For n <= 1 the
// window is all ones, so applying it leaves the block unchanged.
func WindowCoefficients(dst []float64, kind WindowFunc, n int) []float64 {
	if n < 0 {
		n = 0
	}
	if cap(dst) < n {
		dst = make([]float64, n)
	}
	dst = dst[:n]
	for i := range dst {
		dst[i] = 1
	}
	if n <= 1 {
		return dst
	}

	// The gonum windows scale their argument in place.
	switch kind {
	case Hamming:
		window.Hamming(dst)
	case Blackman:
		window.Blackman(dst)
	case Nuttall:
		window.Nuttall(dst)
	default:
		window.Hann(dst)
	}

	// The cosine sums cancel to zero at the edges only up to rounding.
	for i, v := range dst {
		if v < 0 {
			dst[i] = 0
		} else if v > 1 {
			dst[i] = 1
		}
	}
	return dst
}
