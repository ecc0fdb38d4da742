// SPDX-License-Identifier: MIT
package config

import (
	"time"

	"audiolyzer/internal/analysis"
	"audiolyzer/internal/fft"
)

// EngineConfig converts the audio and analysis sections into the engine's
// parameters. Only name parsing can fail here; range checks are left to
// analysis.EngineConfig.Validate.
func (c *Config) EngineConfig() (analysis.EngineConfig, error) {
	window, err := analysis.ParseWindowFunc(c.Analysis.Window)
	if err != nil {
		return analysis.EngineConfig{}, err
	}
	scale, err := analysis.ParseLevelScale(c.Analysis.Scale)
	if err != nil {
		return analysis.EngineConfig{}, err
	}
	backend, err := fft.ParseBackend(c.Analysis.Backend)
	if err != nil {
		return analysis.EngineConfig{}, err
	}

	return analysis.EngineConfig{
		SampleRate:      c.Audio.SampleRate,
		BlockLen:        c.Audio.FramesPerBuffer,
		Bins:            c.Analysis.Bins,
		Smoothing:       c.Analysis.Smoothing,
		Window:          window,
		Gamma:           c.Analysis.Gamma,
		Scale:           scale,
		Backend:         backend,
		MinDB:           c.Analysis.MinDB,
		MaxDB:           c.Analysis.MaxDB,
		SilenceFloor:    c.Analysis.SilenceFloor,
		FastAttack:      c.Analysis.FastAttack,
		RateIndependent: c.Analysis.RateIndependent,
	}, nil
}

// Interval returns the tick period for display.fps.
func (c *Config) Interval() time.Duration {
	if c.Display.FPS <= 0 {
		return time.Second / DefaultFPS
	}
	return time.Second / time.Duration(c.Display.FPS)
}
