// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"audiolyzer/internal/analysis"
	"audiolyzer/internal/fft"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig("")
	if err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if cfg == nil {
		t.Fatal("expected default config, got nil")
	}
	if cfg.Analysis.Bins != DefaultBins || cfg.Audio.SampleRate != DefaultSampleRate {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig("nonexistent.yaml")
	if err == nil {
		t.Errorf("expected error for missing file, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoadConfig_UnmarshalError(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, ":\n:bad")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Error("expected unmarshal error, got nil or wrong error")
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
log_level: debug
audio:
  sample_rate: 48000
analysis:
  bins: 128
  window: blackman
display:
  mode: line
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.Audio.SampleRate != 48000 || cfg.Analysis.Bins != 128 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Analysis.Window != "blackman" || cfg.Display.Mode != "line" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Audio.FramesPerBuffer != DefaultFramesPerBuffer || cfg.Analysis.Smoothing != DefaultSmoothing {
		t.Errorf("defaults lost for unset keys: %+v", cfg)
	}
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
	}{
		{"log level", "log_level: loud"},
		{"sample rate", "audio:\n  sample_rate: 100"},
		{"frames", "audio:\n  frames_per_buffer: 1"},
		{"gate", "audio:\n  gate_threshold: 2"},
		{"device", "audio:\n  input_device: -5"},
		{"bins", "analysis:\n  bins: 0"},
		{"too many bins", "analysis:\n  bins: 100000"},
		{"smoothing", "analysis:\n  smoothing: 1.5"},
		{"window", "analysis:\n  window: kaiser"},
		{"scale", "analysis:\n  scale: mel"},
		{"backend", "analysis:\n  backend: fftw"},
		{"db range", "analysis:\n  min_db: -20\n  max_db: -30"},
		{"fps", "display:\n  fps: 0"},
		{"mode", "display:\n  mode: area"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeTempConfig(t, tt.content))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("LoadConfig = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadConfig_DisplayModeCaseInsensitive(t *testing.T) {
	t.Parallel()
	for _, mode := range []string{"Line", "POINT", " discrete "} {
		t.Run(mode, func(t *testing.T) {
			cfg := Default()
			cfg.Display.Mode = mode
			if err := cfg.Validate(); err != nil {
				t.Errorf("Validate with display.mode %q: %v", mode, err)
			}
		})
	}
}

func TestLoadConfig_NonPowerOfTwoAccepted(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig(writeTempConfig(t, "audio:\n  frames_per_buffer: 1000"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Audio.FramesPerBuffer != 1000 {
		t.Errorf("frames_per_buffer = %d", cfg.Audio.FramesPerBuffer)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ENV_LOG_LEVEL", "warn")
	t.Setenv("ENV_HEADLESS", "true")
	t.Setenv("ENV_SAMPLE_RATE", "96000")
	t.Setenv("ENV_BINS", "200")
	t.Setenv("ENV_WINDOW", "nuttall")
	t.Setenv("ENV_SMOOTHING", "0.5")

	path := writeTempConfig(t, "analysis:\n  bins: 32\n  window: hamming")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogLevel != "warn" || !cfg.Headless || cfg.Audio.SampleRate != 96000 {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if cfg.Analysis.Bins != 200 || cfg.Analysis.Window != "nuttall" || cfg.Analysis.Smoothing != 0.5 {
		t.Errorf("env overrides must win over the file: %+v", cfg.Analysis)
	}
}

func TestEnvOverrides_Unparseable(t *testing.T) {
	t.Setenv("ENV_BINS", "lots")
	t.Setenv("ENV_HEADLESS", "maybe")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Analysis.Bins != DefaultBins || cfg.Headless {
		t.Errorf("unparseable env values were applied: %+v", cfg)
	}
}

func TestEngineConfig(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Analysis.Window = "Hanning"
	cfg.Analysis.Scale = "power-log2"
	cfg.Analysis.Backend = "go-dsp"

	ec, err := cfg.EngineConfig()
	if err != nil {
		t.Fatalf("EngineConfig: %v", err)
	}
	if ec.Window != analysis.Hann || ec.Scale != analysis.PowerLog2 || ec.Backend != fft.GoDSP {
		t.Errorf("names not converted: %+v", ec)
	}
	if ec.BlockLen != DefaultFramesPerBuffer || ec.Bins != DefaultBins || ec.SampleRate != DefaultSampleRate {
		t.Errorf("values not copied: %+v", ec)
	}
	if err := ec.Validate(); err != nil {
		t.Errorf("default engine config invalid: %v", err)
	}

	// The defaults here and in the engine describe the same reference setup.
	ref := analysis.DefaultEngineConfig()
	ref.Scale, ref.Backend = ec.Scale, ec.Backend
	if ec != ref {
		t.Errorf("config defaults %+v differ from engine defaults %+v", ec, ref)
	}
}

func TestInterval(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Display.FPS = 50
	if got := cfg.Interval(); got != 20*time.Millisecond {
		t.Errorf("Interval() = %s, want 20ms", got)
	}
	cfg.Display.FPS = 0
	if got := cfg.Interval(); got != time.Second/DefaultFPS {
		t.Errorf("Interval() = %s for fps 0", got)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Analysis.Bins = 96
	data, err := cfg.YAML()
	if err != nil {
		t.Fatalf("YAML: %v", err)
	}
	if !strings.Contains(string(data), "frames_per_buffer: 1024") {
		t.Errorf("unexpected encoding:\n%s", data)
	}

	loaded, err := LoadConfig(writeTempConfig(t, string(data)))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip changed the config:\n%+v\n%+v", loaded, cfg)
	}
}
