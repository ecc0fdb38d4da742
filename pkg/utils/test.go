// SPDX-License-Identifier: MIT

// Package utils holds signal generators and spectrum helpers shared by the
// package tests. Samples are mono float32 in [-1, 1], the format the capture
// callback delivers.
package utils

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// GenerateSineWave returns size samples of a sine at frequency Hz with the
// given peak amplitude (1.0 is full scale).
func GenerateSineWave(size int, sampleRate, frequency, amplitude float64) []float32 {
	buffer := make([]float32, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = float32(amplitude * math.Sin(2*math.Pi*frequency*t))
	}
	return buffer
}

// GenerateComplexWave returns a 440Hz fundamental with its second and third
// harmonics, peaking at 0.9 of full scale.
func GenerateComplexWave(size int, sampleRate float64) []float32 {
	buffer := make([]float32, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2
		buffer[i] = float32(signal * 0.9)
	}
	return buffer
}

// GenerateSilence returns size zero samples.
func GenerateSilence(size int) []float32 {
	return make([]float32, size)
}

// FindPeakBin returns the index of the largest value in values[startBin:endBin+1].
// The range is clamped to the slice; an empty slice returns 0.
func FindPeakBin(values []float64, startBin, endBin int) int {
	if len(values) == 0 {
		return 0
	}
	if startBin < 0 {
		startBin = 0
	}
	if endBin >= len(values) {
		endBin = len(values) - 1
	}
	if endBin < startBin {
		return startBin
	}
	return startBin + floats.MaxIdx(values[startBin:endBin+1])
}
