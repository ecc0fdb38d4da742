// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math"
	"strings"
)

// Reference display range and silence floor in dB.
const (
	DefaultMinDB        = -85.0
	DefaultMaxDB        = -25.0
	DefaultSilenceFloor = -1000.0
)

// LevelScale describes how a linear amplitude is compressed to dB:
// Gain * log_Base(a), or Gain * log_Base(a*a) when Squared is set.
type LevelScale struct {
	Squared bool
	Base    float64
	Gain    float64
}

var (
	// LinearLog10 is the reference scale, 20*log10(a).
	LinearLog10 = LevelScale{Squared: false, Base: 10, Gain: 20}

	// PowerLog2 compresses squared magnitude with log2. Its gain puts it on
	// the same dB axis as LinearLog10, so the display range keeps its meaning.
	PowerLog2 = LevelScale{Squared: true, Base: 2, Gain: 10 * math.Log10(2)}
)

// ParseLevelScale converts a scale name (case-insensitive) to a LevelScale.
func ParseLevelScale(name string) (LevelScale, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "log10", "linear-log10":
		return LinearLog10, nil
	case "log2", "power-log2":
		return PowerLog2, nil
	default:
		return LinearLog10, fmt.Errorf("unknown level scale: '%s'", name)
	}
}

func (s LevelScale) String() string {
	switch s {
	case LinearLog10:
		return "linear-log10"
	case PowerLog2:
		return "power-log2"
	}
	kind := "linear"
	if s.Squared {
		kind = "power"
	}
	return fmt.Sprintf("%s-%g*log%g", kind, s.Gain, s.Base)
}

// ToDecibels converts amplitude a with scale s. Non-positive and non-finite
// amplitudes never reach the logarithm and return floor, so a corrupt sample
// cannot leave an infinite level in the smoothing history.
func (s LevelScale) ToDecibels(a, floor float64) float64 {
	if s.Squared {
		a *= a
	}
	if !(a > 0) || math.IsInf(a, 1) {
		return floor
	}

	var l float64
	switch s.Base {
	case 10:
		l = math.Log10(a)
	case 2:
		l = math.Log2(a)
	default:
		l = math.Log(a) / math.Log(s.Base)
	}
	return s.Gain * l
}

// ToDecibels converts amplitude a to 20*log10(a), or floor when a <= 0 or a
// is not finite.
func ToDecibels(a, floor float64) float64 {
	return LinearLog10.ToDecibels(a, floor)
}

// Normalize maps db into [0, 1] over the window [minDB, maxDB]: values at or
// below minDB give exactly 0, values at or above maxDB exactly 1.
func Normalize(db, minDB, maxDB float64) float64 {
	if db <= minDB || maxDB <= minDB {
		return 0
	}
	if db >= maxDB {
		return 1
	}
	return (db - minDB) / (maxDB - minDB)
}
