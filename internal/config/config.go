// SPDX-License-Identifier: MIT

// Package config loads the analyzer configuration: built-in defaults, then an
// optional YAML file, then ENV_* overrides, then validation. Command-line
// flags are applied on top by the cmd package.
package config

// Core configuration constants that define the boundaries and defaults
// for the analyzer.
const (
	// Audio capture defaults.
	DefaultDeviceID        = MinDeviceID // System default input device
	DefaultSampleRate      = 44100       // CD-quality audio
	DefaultFramesPerBuffer = 1024        // Also the transform length
	DefaultLowLatency      = false       // Standard latency mode
	DefaultGateThreshold   = 0.0         // Gate disabled

	// Analysis defaults.
	DefaultBins            = 64
	DefaultSmoothing       = 0.7
	DefaultWindow          = "hann"
	DefaultGamma           = 2.0
	DefaultScale           = "linear-log10"
	DefaultBackend         = "gonum"
	DefaultMinDB           = -85.0
	DefaultMaxDB           = -25.0
	DefaultSilenceFloor    = -1000.0
	DefaultFastAttack      = true
	DefaultRateIndependent = true

	// Display defaults.
	DefaultFPS         = 60
	DefaultDisplayMode = "discrete"
	DefaultSpring      = false

	DefaultLogLevel = "info"
	DefaultHeadless = false

	// Hardware and processing limits
	MinDeviceID     = -1     // -1 represents system default device
	MinSampleRate   = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate   = 192000 // Maximum supported sample rate (Hz)
	MaxBufferFrames = 8192   // Maximum frames per buffer
	MaxBins         = 4096   // Upper bound on output bins
	MaxFPS          = 240    // Upper bound on the analysis tick rate
)

// DisplayModes lists the accepted display.mode values.
var DisplayModes = []string{"discrete", "point", "line"}

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	LogLevel string         `yaml:"log_level"` // Logging level (e.g., "debug", "info", "warn", "error").
	Headless bool           `yaml:"headless"`  // Run without the terminal UI, logging the dominant band instead.
	Audio    AudioConfig    `yaml:"audio"`     // Audio capture settings.
	Analysis AnalysisConfig `yaml:"analysis"`  // Spectrum analysis settings.
	Display  DisplayConfig  `yaml:"display"`   // Rendering and tick settings.
}

// AudioConfig holds settings related to audio input.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index for audio input (-1 for default).
	SampleRate      float64 `yaml:"sample_rate"`       // Sample rate in Hz (e.g., 44100, 48000).
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Frames per hardware buffer; also the transform length.
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency settings from PortAudio device.
	GateThreshold   float64 `yaml:"gate_threshold"`    // Peak level in [0,1] below which blocks count as silence; 0 disables.
}

// AnalysisConfig holds the spectrum engine parameters.
type AnalysisConfig struct {
	Bins            int     `yaml:"bins"`             // Output bin count.
	Smoothing       float64 `yaml:"smoothing"`        // Smoothing base in (0,1); larger decays slower.
	Window          string  `yaml:"window"`           // hann, hamming, blackman or nuttall.
	Gamma           float64 `yaml:"gamma"`            // Frequency warp exponent.
	Scale           string  `yaml:"scale"`            // linear-log10 (reference) or power-log2.
	Backend         string  `yaml:"backend"`          // FFT implementation: gonum or godsp.
	MinDB           float64 `yaml:"min_db"`           // Bottom of the display range.
	MaxDB           float64 `yaml:"max_db"`           // Top of the display range.
	SilenceFloor    float64 `yaml:"silence_floor"`    // dB used for zero amplitude.
	FastAttack      bool    `yaml:"fast_attack"`      // Rising bins snap instead of blending.
	RateIndependent bool    `yaml:"rate_independent"` // Scale smoothing by blocks per second.
}

// DisplayConfig holds settings for the consumer side.
type DisplayConfig struct {
	FPS    int    `yaml:"fps"`    // Analysis and redraw rate.
	Mode   string `yaml:"mode"`   // discrete, point or line.
	Spring bool   `yaml:"spring"` // Ease column heights with a spring.
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Headless: DefaultHeadless,
		Audio: AudioConfig{
			InputDevice:     DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      DefaultLowLatency,
			GateThreshold:   DefaultGateThreshold,
		},
		Analysis: AnalysisConfig{
			Bins:            DefaultBins,
			Smoothing:       DefaultSmoothing,
			Window:          DefaultWindow,
			Gamma:           DefaultGamma,
			Scale:           DefaultScale,
			Backend:         DefaultBackend,
			MinDB:           DefaultMinDB,
			MaxDB:           DefaultMaxDB,
			SilenceFloor:    DefaultSilenceFloor,
			FastAttack:      DefaultFastAttack,
			RateIndependent: DefaultRateIndependent,
		},
		Display: DisplayConfig{
			FPS:    DefaultFPS,
			Mode:   DefaultDisplayMode,
			Spring: DefaultSpring,
		},
	}
}
