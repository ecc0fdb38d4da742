// SPDX-License-Identifier: MIT
package audio

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"audiolyzer/internal/handoff"
	applog "audiolyzer/internal/log"
	"audiolyzer/internal/metrics"

	"github.com/gordonklaus/portaudio"
)

// CaptureConfig selects the input device and stream parameters. Capture is
// always mono.
type CaptureConfig struct {
	DeviceID        int     // DefaultDeviceID for the host default.
	SampleRate      float64 // Frames per second requested from the driver.
	FramesPerBuffer int     // Block length requested from the driver.
	LowLatency      bool    // Use the device's low input latency instead of the high one.
	GateThreshold   float64 // Peak level below which blocks are published as silence; 0 disables.
}

// Capture owns the PortAudio input stream and is the producer side of the
// handoff. The stream callback publishes each buffer without waiting on the
// consumer.
type Capture struct {
	cfg     CaptureConfig
	mailbox *handoff.Mailbox
	metrics *metrics.Metrics
	gate    *Gate

	mu       sync.Mutex // Protects stream, device and deviceID across Start/Stop/SwitchDevice.
	stream   inputStream
	device   *portaudio.DeviceInfo
	deviceID int
	latency  time.Duration

	silence []float32 // Published in place of gated blocks.
	now     func() time.Time
}

// NewCapture resolves the configured input device. PortAudio must be
// initialized. m may be nil to use metrics.Default.
func NewCapture(cfg CaptureConfig, mailbox *handoff.Mailbox, m *metrics.Metrics) (*Capture, error) {
	if mailbox == nil {
		return nil, fmt.Errorf("capture: mailbox cannot be nil")
	}
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("capture: sample rate must be positive, got %g", cfg.SampleRate)
	}
	if cfg.FramesPerBuffer < 0 {
		return nil, fmt.Errorf("capture: frames per buffer must not be negative, got %d", cfg.FramesPerBuffer)
	}
	if m == nil {
		m = metrics.Default()
	}

	c := &Capture{
		cfg:     cfg,
		mailbox: mailbox,
		metrics: m,
		gate:    NewGate(cfg.GateThreshold),
		silence: make([]float32, cfg.FramesPerBuffer),
		now:     time.Now,
	}
	if err := c.selectDevice(cfg.DeviceID); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Capture) selectDevice(id int) error {
	device, err := InputDevice(id)
	if err != nil {
		return err
	}
	c.device = device
	c.deviceID = id
	if c.cfg.LowLatency {
		c.latency = device.DefaultLowInputLatency
	} else {
		c.latency = device.DefaultHighInputLatency
	}
	return nil
}

// Gate returns the capture's noise gate.
func (c *Capture) Gate() *Gate {
	return c.gate
}

// DeviceID returns the configured device ID (DefaultDeviceID for the default).
func (c *Capture) DeviceID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deviceID
}

// DeviceName returns the name of the device in use.
func (c *Capture) DeviceName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return ""
	}
	return c.device.Name
}

// Latency returns the input latency requested from the driver.
func (c *Capture) Latency() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latency
}

// Running reports whether the stream is open.
func (c *Capture) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream != nil
}

// Start opens and starts the input stream. Calling Start on a running
// capture is a no-op.
func (c *Capture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startLocked()
}

func (c *Capture) startLocked() error {
	if c.stream != nil {
		applog.Warnf("Capture: Start called but already running.")
		return nil
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: 1,
			Device:   c.device,
			Latency:  c.latency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		FramesPerBuffer: c.cfg.FramesPerBuffer,
		SampleRate:      c.cfg.SampleRate,
	}

	stream, err := paOpenStreamFunc(params, c.process)
	if err != nil {
		return fmt.Errorf("failed to open input stream on %q: %w", c.device.Name, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start input stream on %q: %w", c.device.Name, err)
	}
	c.stream = stream

	applog.Infof("Capture: Started on %q (SampleRate: %.0f Hz, FramesPerBuffer: %d, Latency: %s)",
		c.device.Name, c.cfg.SampleRate, c.cfg.FramesPerBuffer, c.latency)
	return nil
}

// Stop stops and closes the stream. Safe to call when not running.
func (c *Capture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopLocked()
}

func (c *Capture) stopLocked() error {
	if c.stream == nil {
		return nil
	}
	stream := c.stream
	c.stream = nil

	if err := stream.Stop(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to stop input stream: %w", err)
	}
	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to close input stream: %w", err)
	}
	applog.Infof("Capture: Stopped.")
	return nil
}

// Close implements io.Closer.
func (c *Capture) Close() error {
	return c.Stop()
}

// SwitchDevice moves capture to another input device. The mailbox is cleared
// so no block from the old device is analyzed afterwards. If the capture was
// running it is restarted on the new device. If the new device cannot be
// selected or started, the previous device is selected again, restarted if it
// was running, and the original error is returned.
func (c *Capture) SwitchDevice(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	wasRunning := c.stream != nil
	if err := c.stopLocked(); err != nil {
		return err
	}

	prevID := c.deviceID
	if err := c.selectDevice(id); err != nil {
		c.restoreLocked(prevID, wasRunning)
		return err
	}
	c.mailbox.Clear()

	if wasRunning {
		if err := c.startLocked(); err != nil {
			applog.Warnf("Capture: Device %d failed to start, reverting to device %d: %v", id, prevID, err)
			c.restoreLocked(prevID, wasRunning)
			return err
		}
	}
	applog.Infof("Capture: Switched to device %d (%s)", id, c.device.Name)
	return nil
}

// restoreLocked reselects device id and restarts it if restart is set.
// Failures are logged; the caller reports the error that caused the revert.
func (c *Capture) restoreLocked(id int, restart bool) {
	if c.deviceID != id {
		if err := c.selectDevice(id); err != nil {
			applog.Errorf("Capture: Failed to reselect device %d: %v", id, err)
			return
		}
	}
	if restart {
		if err := c.startLocked(); err != nil {
			applog.Errorf("Capture: Failed to restart device %d: %v", id, err)
		}
	}
}

// process is the stream callback.
// Performance Critical:
// - Runs in a dedicated OS thread (LockOSThread)
// - Uses pre-allocated buffers only
// - Never waits on the consumer
func (c *Capture) process(in []float32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	block := in
	if !c.gate.Open(in) {
		if cap(c.silence) < len(in) {
			c.silence = make([]float32, len(in))
		}
		block = c.silence[:len(in)]
	}

	c.mailbox.Publish(block, c.now())
	c.metrics.BlocksPublished.Add(context.Background(), 1)
}

var _ interface{ Close() error } = (*Capture)(nil)
