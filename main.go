// SPDX-License-Identifier: MIT
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"audiolyzer/cmd"
	"audiolyzer/internal/analysis"
	"audiolyzer/internal/audio"
	"audiolyzer/internal/config"
	"audiolyzer/internal/handoff"
	applog "audiolyzer/internal/log"
	"audiolyzer/internal/metrics"
	"audiolyzer/internal/transport"
	"audiolyzer/internal/tui"
	"audiolyzer/pkg/build"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// headlessLogInterval is how often the headless transport logs a summary.
const headlessLogInterval = time.Second

// main is the entry point for the analyzer.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Parse command line arguments and load configuration
//   - Execute one-off commands if requested
//   - Initialize PortAudio and build the pipeline
//
// 2. Concurrent Phase (Hot Path):
//   - Capture publishes every hardware buffer into the mailbox
//   - The runner (or the terminal UI's tick) analyzes the latest block
//
// 3. Shutdown Phase (Cold Path):
//   - Stop analysis, then capture
//   - Log the metrics summary
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	buildErr := build.Initialize()

	// One thread for the audio callback, one for analysis and the UI.
	runtime.GOMAXPROCS(2)

	opts, err := cmd.ParseArgs(os.Args[1:], os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if opts.Command == "" {
		return
	}

	cfg := opts.Config
	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
	if buildErr != nil {
		applog.Debugf("Build: %v", buildErr)
	}

	if err := execute(opts.Command, cfg); err != nil {
		applog.Fatalf("%v", err)
	}
}

// execute runs command. Commands that need no audio return before PortAudio
// is initialized.
func execute(command string, cfg *config.Config) error {
	switch command {
	case cmd.CommandWindows:
		for _, w := range analysis.WindowFuncs() {
			fmt.Println(w)
		}
		return nil
	case cmd.CommandConfig:
		data, err := cfg.YAML()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := audio.Initialize(); err != nil {
		return err
	}
	defer func() {
		if err := audio.Terminate(); err != nil {
			applog.Errorf("Audio: %v", err)
		}
	}()

	if command == cmd.CommandList {
		return audio.ListDevices(os.Stdout)
	}
	return run(cfg)
}

// run builds the pipeline and blocks until the UI exits or, headless, until
// SIGINT or SIGTERM.
func run(cfg *config.Config) error {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	defer func() {
		summary, err := metrics.Summary(context.Background(), reader)
		if err != nil {
			applog.Warnf("Metrics: %v", err)
		} else if summary != "" {
			applog.Infof("Metrics: %s", summary)
		}
		_ = mp.Shutdown(context.Background())
	}()

	m, err := metrics.NewMetrics(mp)
	if err != nil {
		return err
	}

	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return err
	}
	engine, err := analysis.NewEngine(engineCfg)
	if err != nil {
		return err
	}

	mailbox := handoff.New(cfg.Audio.FramesPerBuffer)
	capture, err := audio.NewCapture(audio.CaptureConfig{
		DeviceID:        cfg.Audio.InputDevice,
		SampleRate:      cfg.Audio.SampleRate,
		FramesPerBuffer: cfg.Audio.FramesPerBuffer,
		LowLatency:      cfg.Audio.LowLatency,
		GateThreshold:   cfg.Audio.GateThreshold,
	}, mailbox, m)
	if err != nil {
		return err
	}
	defer func() {
		if err := capture.Close(); err != nil {
			applog.Errorf("Audio: Error closing capture: %v", err)
		}
	}()

	var sink transport.Transport
	if cfg.Headless {
		sink = transport.NewLoggingTransport(headlessLogInterval, cfg.Audio.SampleRate, cfg.Analysis.Gamma)
		defer sink.Close()
	}

	runner, err := analysis.NewRunner(engine, mailbox, sink, m, cfg.Interval())
	if err != nil {
		return err
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	// CRITICAL: Start of real-time audio processing. From here on PortAudio
	// calls the capture callback on its own thread.
	if err := capture.Start(); err != nil {
		return err
	}
	applog.Infof("Audio: Capturing from '%s' (%.0f Hz, %d frames, latency %s)",
		capture.DeviceName(), cfg.Audio.SampleRate, cfg.Audio.FramesPerBuffer, capture.Latency())

	if cfg.Headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runner.Start()
		<-ctx.Done()

		// ==================== SHUTDOWN PHASE (Cold Path) ====================
		return runner.Stop()
	}

	mode, err := tui.ParseMode(cfg.Display.Mode)
	if err != nil {
		return err
	}

	// Hold log output while the alternate screen is active.
	var held bytes.Buffer
	applog.SetOutput(&held)
	uiErr := tui.Run(tui.Options{
		Runner:  runner,
		Devices: capture,
		Mode:    mode,
		Spring:  cfg.Display.Spring,
	})
	applog.SetOutput(os.Stderr)
	_, _ = os.Stderr.Write(held.Bytes())

	// ==================== SHUTDOWN PHASE (Cold Path) ====================
	return uiErr
}
