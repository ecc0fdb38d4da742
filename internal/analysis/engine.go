// SPDX-License-Identifier: MIT

// Package analysis turns raw mono sample blocks into display-ready spectra:
// window, transform, perceptual bin mapping, smoothing and level
// normalization. The Engine is owned by a single goroutine; only the window
// selection may be changed from elsewhere.
package analysis

import (
	"errors"
	"fmt"
	"sync/atomic"

	"audiolyzer/internal/fft"
	applog "audiolyzer/internal/log"

	"gonum.org/v1/gonum/floats"
)

// ErrInvalidConfig is wrapped by every EngineConfig validation error.
var ErrInvalidConfig = errors.New("invalid engine config")

// EngineConfig holds the per-session analysis parameters.
type EngineConfig struct {
	SampleRate float64 // Frames per second of the input.
	BlockLen   int     // Expected transform length; other lengths are accepted per block.
	Bins       int     // Output bin count.
	Smoothing  float64 // Smoothing base in (0, 1); larger decays slower.
	Window     WindowFunc
	Gamma      float64 // Frequency warp exponent.
	Scale      LevelScale
	Backend    fft.Backend

	MinDB        float64
	MaxDB        float64
	SilenceFloor float64 // dB value used for zero amplitude.

	FastAttack bool // Rising bins snap instead of blending.
	// RateIndependent derives the per-block factor with EffectiveSmoothing
	// instead of applying Smoothing to every block as is.
	RateIndependent bool
}

// DefaultEngineConfig returns the reference configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		SampleRate:      44100,
		BlockLen:        1024,
		Bins:            64,
		Smoothing:       0.7,
		Window:          Hann,
		Gamma:           DefaultGamma,
		Scale:           LinearLog10,
		Backend:         fft.Gonum,
		MinDB:           DefaultMinDB,
		MaxDB:           DefaultMaxDB,
		SilenceFloor:    DefaultSilenceFloor,
		FastAttack:      true,
		RateIndependent: true,
	}
}

// Validate checks the configuration and returns an error wrapping
// ErrInvalidConfig for the first problem found.
func (c EngineConfig) Validate() error {
	switch {
	case !(c.SampleRate > 0):
		return fmt.Errorf("%w: sample rate must be positive, got %g", ErrInvalidConfig, c.SampleRate)
	case c.BlockLen < 0:
		return fmt.Errorf("%w: block length must not be negative, got %d", ErrInvalidConfig, c.BlockLen)
	case c.Bins <= 0:
		return fmt.Errorf("%w: bin count must be positive, got %d", ErrInvalidConfig, c.Bins)
	case !(c.Smoothing > 0 && c.Smoothing < 1):
		return fmt.Errorf("%w: smoothing must be in (0, 1), got %g", ErrInvalidConfig, c.Smoothing)
	case !c.Window.Valid():
		return fmt.Errorf("%w: unknown window %v", ErrInvalidConfig, c.Window)
	case !(c.Gamma > 0):
		return fmt.Errorf("%w: gamma must be positive, got %g", ErrInvalidConfig, c.Gamma)
	case !(c.Scale.Base > 0) || c.Scale.Base == 1 || c.Scale.Gain == 0:
		return fmt.Errorf("%w: level scale %v is not usable", ErrInvalidConfig, c.Scale)
	case !(c.MaxDB > c.MinDB):
		return fmt.Errorf("%w: max dB (%g) must exceed min dB (%g)", ErrInvalidConfig, c.MaxDB, c.MinDB)
	case c.SilenceFloor > c.MinDB:
		return fmt.Errorf("%w: silence floor (%g) must not exceed min dB (%g)", ErrInvalidConfig, c.SilenceFloor, c.MinDB)
	}
	return nil
}

// Engine runs the analysis pipeline. Process, Resize and the output accessors
// must be called from one goroutine; SetWindow and CycleWindow are safe from
// any goroutine and take effect on the next Process.
type Engine struct {
	cfg    EngineConfig
	window atomic.Int32

	transform *fft.Transform
	mapper    *BinMapper
	smoother  *Smoother

	// Window coefficients are regenerated only when the kind or length changes.
	winKind WindowFunc
	coeffs  []float64

	seq    []float64 // windowed block
	amps   []float64 // calibrated amplitude per component
	work   []float64 // per-bin dB, smoothed in place
	levels []float64 // normalized output

	blockLen int // length of the last processed block
}

// NewEngine validates cfg and allocates every buffer for cfg.BlockLen.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:       cfg,
		transform: fft.NewTransform(cfg.Backend, cfg.BlockLen),
		winKind:   -1,
	}
	e.window.Store(int32(cfg.Window))
	e.allocBins(cfg.Bins)
	if cfg.BlockLen > 0 {
		e.seq = make([]float64, cfg.BlockLen)
		e.amps = make([]float64, cfg.BlockLen/2+1)
	}

	applog.Infof("Analysis: Initializing engine (SampleRate: %.0f Hz, Block: %d, Bins: %d, Window: %v, Smoothing: %.2f, Scale: %v, Backend: %v)",
		cfg.SampleRate, cfg.BlockLen, cfg.Bins, cfg.Window, cfg.Smoothing, cfg.Scale, cfg.Backend)
	return e, nil
}

// allocBins replaces all per-bin state. History is not carried over.
func (e *Engine) allocBins(bins int) {
	e.cfg.Bins = bins
	e.mapper = NewBinMapper(bins, e.cfg.Gamma)
	e.smoother = NewSmoother(bins, e.cfg.SilenceFloor, e.cfg.FastAttack)
	e.work = make([]float64, bins)
	e.levels = make([]float64, bins)
}

// Config returns the configuration with the current bin count and window.
func (e *Engine) Config() EngineConfig {
	c := e.cfg
	c.Window = e.Window()
	return c
}

// Bins returns the output bin count.
func (e *Engine) Bins() int {
	return e.cfg.Bins
}

// Window returns the window function used for the next frame.
func (e *Engine) Window() WindowFunc {
	return WindowFunc(e.window.Load())
}

// SetWindow selects the window function for the next frame.
func (e *Engine) SetWindow(w WindowFunc) {
	if !w.Valid() {
		applog.Warnf("Analysis: Ignoring invalid window %v", w)
		return
	}
	e.window.Store(int32(w))
}

// CycleWindow advances to the next window function and returns it.
func (e *Engine) CycleWindow() WindowFunc {
	for {
		cur := e.window.Load()
		next := WindowFunc(cur).Next()
		if e.window.CompareAndSwap(cur, int32(next)) {
			return next
		}
	}
}

// Resize changes the output bin count. All smoothing history is dropped and
// the output reads as silence until the next frame.
func (e *Engine) Resize(bins int) error {
	if bins <= 0 {
		return fmt.Errorf("%w: bin count must be positive, got %d", ErrInvalidConfig, bins)
	}
	if bins == e.cfg.Bins {
		return nil
	}
	applog.Infof("Analysis: Resizing output from %d to %d bins", e.cfg.Bins, bins)
	e.allocBins(bins)
	return nil
}

// Process analyzes one block and updates the output. It returns false and
// leaves the previous output untouched when the block is too short to
// window (len <= 1).
func (e *Engine) Process(block []float32) bool {
	n := len(block)
	if n <= 1 {
		return false
	}

	if kind := e.Window(); kind != e.winKind || n != len(e.coeffs) {
		e.coeffs = WindowCoefficients(e.coeffs, kind, n)
		e.winKind = kind
	}

	if cap(e.seq) < n {
		e.seq = make([]float64, n)
	}
	e.seq = e.seq[:n]
	for i, v := range block {
		e.seq[i] = float64(v)
	}
	floats.Mul(e.seq, e.coeffs)

	e.amps = fft.Amplitudes(e.amps, e.transform.Coefficients(e.seq), n)
	e.work = e.mapper.Map(e.work, e.amps, n, e.cfg.SampleRate)

	for i, a := range e.work {
		e.work[i] = e.cfg.Scale.ToDecibels(a, e.cfg.SilenceFloor)
	}
	e.smoother.Smooth(e.work, e.smoothingFactor(n))
	for i, db := range e.work {
		e.levels[i] = Normalize(db, e.cfg.MinDB, e.cfg.MaxDB)
	}

	e.blockLen = n
	return true
}

func (e *Engine) smoothingFactor(n int) float64 {
	if !e.cfg.RateIndependent {
		return e.cfg.Smoothing
	}
	return EffectiveSmoothing(e.cfg.Smoothing, n, e.cfg.SampleRate)
}

// Levels returns the normalized output, one value in [0, 1] per bin. The
// slice is owned by the Engine and overwritten by the next Process.
func (e *Engine) Levels() []float64 {
	return e.levels
}

// OutputInto copies the normalized output into dst, growing it if needed.
func (e *Engine) OutputInto(dst []float64) []float64 {
	if cap(dst) < len(e.levels) {
		dst = make([]float64, len(e.levels))
	}
	dst = dst[:len(e.levels)]
	copy(dst, e.levels)
	return dst
}

// Decibels returns the smoothed per-bin level in dB from the last frame.
func (e *Engine) Decibels() []float64 {
	return e.smoother.Values()
}

// BlockLen returns the length of the last processed block.
func (e *Engine) BlockLen() int {
	return e.blockLen
}

// PeakBin returns the loudest output bin of the last frame and the midpoint
// of its frequency range in Hz. ok is false when every bin is at the bottom of the range.
func (e *Engine) PeakBin() (bin int, freq float64, ok bool) {
	if len(e.levels) == 0 || floats.Max(e.levels) <= 0 {
		return 0, 0, false
	}
	bin = floats.MaxIdx(e.levels)
	lo, hi := BinRange(bin, len(e.levels), e.cfg.SampleRate, e.cfg.Gamma)
	return bin, (lo + hi) / 2, true
}
