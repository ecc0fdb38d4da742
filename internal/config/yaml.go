// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	applog "audiolyzer/internal/log"
	"audiolyzer/pkg/bitint"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation error.
var ErrInvalidConfig = errors.New("invalid configuration")

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches default locations ("config.yaml"). If no file is found, it uses built-in
// defaults. After loading defaults or from file, it applies environment variable
// overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		candidates := []string{"config.yaml"}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		applog.Debugf("configuration: Loaded %s", path)
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section and returns an error wrapping
// ErrInvalidConfig for the first problem found. A frames-per-buffer value
// that is not a power of two is accepted with a warning.
func (c *Config) Validate() error {
	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: unknown log_level '%s'", ErrInvalidConfig, c.LogLevel)
	}

	a := c.Audio
	if a.InputDevice < MinDeviceID {
		return fmt.Errorf("%w: audio.input_device must be >= %d, got %d", ErrInvalidConfig, MinDeviceID, a.InputDevice)
	}
	if a.SampleRate < MinSampleRate || a.SampleRate > MaxSampleRate {
		return fmt.Errorf("%w: audio.sample_rate must be in [%d, %d], got %g", ErrInvalidConfig, MinSampleRate, MaxSampleRate, a.SampleRate)
	}
	if a.FramesPerBuffer < 2 || a.FramesPerBuffer > MaxBufferFrames {
		return fmt.Errorf("%w: audio.frames_per_buffer must be in [2, %d], got %d", ErrInvalidConfig, MaxBufferFrames, a.FramesPerBuffer)
	}
	if !bitint.IsPowerOfTwo(a.FramesPerBuffer) {
		applog.Warnf("configuration: audio.frames_per_buffer %d is not a power of two (next: %d); the transform will be slower",
			a.FramesPerBuffer, bitint.NextPowerOfTwo(a.FramesPerBuffer))
	}
	if a.GateThreshold < 0 || a.GateThreshold > 1 {
		return fmt.Errorf("%w: audio.gate_threshold must be in [0, 1], got %g", ErrInvalidConfig, a.GateThreshold)
	}

	if c.Analysis.Bins > MaxBins {
		return fmt.Errorf("%w: analysis.bins must be <= %d, got %d", ErrInvalidConfig, MaxBins, c.Analysis.Bins)
	}
	ec, err := c.EngineConfig()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := ec.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if c.Display.FPS < 1 || c.Display.FPS > MaxFPS {
		return fmt.Errorf("%w: display.fps must be in [1, %d], got %d", ErrInvalidConfig, MaxFPS, c.Display.FPS)
	}
	validMode := func(m string) bool { return strings.EqualFold(m, strings.TrimSpace(c.Display.Mode)) }
	if !slices.ContainsFunc(DisplayModes, validMode) {
		return fmt.Errorf("%w: display.mode must be one of %v, got '%s'", ErrInvalidConfig, DisplayModes, c.Display.Mode)
	}
	return nil
}

// applyEnvOverrides applies ENV_* variables on top of the loaded values.
// Unparseable values are logged and ignored.
func (c *Config) applyEnvOverrides() {
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		c.LogLevel = val
		applog.Infof("configuration: Overriding log_level from env: %s", val)
	}
	// ENV_HEADLESS
	if val, ok := os.LookupEnv("ENV_HEADLESS"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Headless = bVal
			applog.Infof("configuration: Overriding headless from env: %v", bVal)
		} else {
			applog.Warnf("configuration: Ignoring ENV_HEADLESS=%q: %v", val, err)
		}
	}

	// ENV_SAMPLE_RATE
	if val, ok := os.LookupEnv("ENV_SAMPLE_RATE"); ok {
		if fVal, err := strconv.ParseFloat(val, 64); err == nil {
			c.Audio.SampleRate = fVal
			applog.Infof("configuration: Overriding audio.sample_rate from env: %g", fVal)
		} else {
			applog.Warnf("configuration: Ignoring ENV_SAMPLE_RATE=%q: %v", val, err)
		}
	}

	// ENV_BINS
	if val, ok := os.LookupEnv("ENV_BINS"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			c.Analysis.Bins = iVal
			applog.Infof("configuration: Overriding analysis.bins from env: %d", iVal)
		} else {
			applog.Warnf("configuration: Ignoring ENV_BINS=%q: %v", val, err)
		}
	}
	// ENV_WINDOW
	if val, ok := os.LookupEnv("ENV_WINDOW"); ok {
		c.Analysis.Window = val
		applog.Infof("configuration: Overriding analysis.window from env: %s", val)
	}
	// ENV_SMOOTHING
	if val, ok := os.LookupEnv("ENV_SMOOTHING"); ok {
		if fVal, err := strconv.ParseFloat(val, 64); err == nil {
			c.Analysis.Smoothing = fVal
			applog.Infof("configuration: Overriding analysis.smoothing from env: %g", fVal)
		} else {
			applog.Warnf("configuration: Ignoring ENV_SMOOTHING=%q: %v", val, err)
		}
	}
}

// YAML encodes the configuration in the same layout LoadConfig reads.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}
