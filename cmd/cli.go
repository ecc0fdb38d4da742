// SPDX-License-Identifier: MIT

// Package cmd parses the command line into a loaded configuration and the
// command main should run.
package cmd

import (
	"fmt"
	"io"

	"audiolyzer/internal/config"
	"audiolyzer/pkg/build"

	"github.com/spf13/cobra"
)

// Commands selected on the command line.
const (
	CommandRun     = "run"     // Start capture and analysis.
	CommandList    = "list"    // Print input devices.
	CommandWindows = "windows" // Print window functions.
	CommandConfig  = "config"  // Print the effective configuration.
)

// Options is the result of parsing the command line. Command is empty when
// cobra already handled the invocation (help or version).
type Options struct {
	Command string
	Config  *config.Config
}

// flagValues receives the raw flag values; only flags the user set are copied
// onto the loaded configuration.
type flagValues struct {
	configPath      string
	logLevel        string
	headless        bool
	deviceID        int
	sampleRate      float64
	framesPerBuffer int
	lowLatency      bool
	gateThreshold   float64
	bins            int
	smoothing       float64
	window          string
	gamma           float64
	scale           string
	backend         string
	minDB           float64
	maxDB           float64
	fps             int
	displayMode     string
	spring          bool
}

// ParseArgs parses args (without the program name). Help and version output
// go to out.
func ParseArgs(args []string, out io.Writer) (*Options, error) {
	buildInfo := build.GetBuildFlags()
	options := &Options{}
	var fv flagValues

	load := func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadConfig(fv.configPath)
		if err != nil {
			return err
		}
		if err := fv.apply(cmd, cfg); err != nil {
			return err
		}
		options.Config = cfg
		return nil
	}

	command := func(name string) func(*cobra.Command, []string) {
		return func(*cobra.Command, []string) {
			options.Command = name
		}
	}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: load,
		Run:               command(CommandRun),
	}
	rootCmd.SetVersionTemplate(buildInfo.String() + "\n")
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List available audio input devices",
			Args:  cobra.NoArgs,
			Run:   command(CommandList),
		},
		&cobra.Command{
			Use:   "windows",
			Short: "List the available window functions",
			Args:  cobra.NoArgs,
			Run:   command(CommandWindows),
		},
		&cobra.Command{
			Use:   "config",
			Short: "Print the effective configuration as YAML",
			Args:  cobra.NoArgs,
			Run:   command(CommandConfig),
		},
	)

	pf := rootCmd.PersistentFlags()

	// General
	pf.StringVarP(&fv.configPath, "config", "c", "",
		"Path to a YAML configuration file (default: ./config.yaml if present)")
	pf.StringVar(&fv.logLevel, "log-level", config.DefaultLogLevel,
		"Log level: debug, info, warn, error")
	pf.BoolVar(&fv.headless, "headless", config.DefaultHeadless,
		"Run without the terminal UI and log the dominant band")

	// Audio Device Configuration
	pf.IntVarP(&fv.deviceID, "device", "d", config.DefaultDeviceID,
		"Specify input device ID. Use 'list' command to see available devices.")
	pf.Float64VarP(&fv.sampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	pf.IntVarP(&fv.framesPerBuffer, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"The number of frames per buffer; also the transform length")
	pf.BoolVarP(&fv.lowLatency, "low-latency", "l", config.DefaultLowLatency,
		"Use low latency mode for real-time processing")
	pf.Float64Var(&fv.gateThreshold, "gate-threshold", config.DefaultGateThreshold,
		"Peak level in [0,1] below which input is treated as silence (0 disables)")

	// Analysis Configuration
	pf.IntVarP(&fv.bins, "bins", "n", config.DefaultBins,
		"Number of output bins")
	pf.Float64Var(&fv.smoothing, "smoothing", config.DefaultSmoothing,
		"Smoothing base in (0,1); larger values decay slower")
	pf.StringVarP(&fv.window, "window", "w", config.DefaultWindow,
		"Window function. Use 'windows' command to see the choices.")
	pf.Float64Var(&fv.gamma, "gamma", config.DefaultGamma,
		"Frequency warp exponent; 1 is linear, larger favors low frequencies")
	pf.StringVar(&fv.scale, "scale", config.DefaultScale,
		"Level conversion: linear-log10 or power-log2")
	pf.StringVar(&fv.backend, "backend", config.DefaultBackend,
		"FFT implementation: gonum or godsp")
	pf.Float64Var(&fv.minDB, "min-db", config.DefaultMinDB,
		"Level shown as empty, in dB")
	pf.Float64Var(&fv.maxDB, "max-db", config.DefaultMaxDB,
		"Level shown as full, in dB")

	// Display Configuration
	pf.IntVar(&fv.fps, "fps", config.DefaultFPS,
		"Analysis and redraw rate")
	pf.StringVarP(&fv.displayMode, "display-mode", "m", config.DefaultDisplayMode,
		"Display mode: discrete, point or line")
	pf.BoolVar(&fv.spring, "spring", config.DefaultSpring,
		"Ease bar heights with a spring")

	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return options, nil
}

// apply copies every flag the user set onto cfg and re-validates it.
func (fv *flagValues) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	set := func(name string, fn func()) {
		if flags.Changed(name) {
			fn()
		}
	}

	set("log-level", func() { cfg.LogLevel = fv.logLevel })
	set("headless", func() { cfg.Headless = fv.headless })
	set("device", func() { cfg.Audio.InputDevice = fv.deviceID })
	set("sample-rate", func() { cfg.Audio.SampleRate = fv.sampleRate })
	set("frames-per-buffer", func() { cfg.Audio.FramesPerBuffer = fv.framesPerBuffer })
	set("low-latency", func() { cfg.Audio.LowLatency = fv.lowLatency })
	set("gate-threshold", func() { cfg.Audio.GateThreshold = fv.gateThreshold })
	set("bins", func() { cfg.Analysis.Bins = fv.bins })
	set("smoothing", func() { cfg.Analysis.Smoothing = fv.smoothing })
	set("window", func() { cfg.Analysis.Window = fv.window })
	set("gamma", func() { cfg.Analysis.Gamma = fv.gamma })
	set("scale", func() { cfg.Analysis.Scale = fv.scale })
	set("backend", func() { cfg.Analysis.Backend = fv.backend })
	set("min-db", func() { cfg.Analysis.MinDB = fv.minDB })
	set("max-db", func() { cfg.Analysis.MaxDB = fv.maxDB })
	set("fps", func() { cfg.Display.FPS = fv.fps })
	set("display-mode", func() { cfg.Display.Mode = fv.displayMode })
	set("spring", func() { cfg.Display.Spring = fv.spring })

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}
