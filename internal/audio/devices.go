// SPDX-License-Identifier: MIT

// Package audio is the capture side of the analyzer: it enumerates PortAudio
// devices, opens a mono float32 input stream and publishes every hardware
// buffer into the handoff mailbox.
package audio

import (
	"fmt"
	"io"
	"time"

	"github.com/gordonklaus/portaudio"
)

// DefaultDeviceID selects the host's default input device.
const DefaultDeviceID = -1

// PortAudio entry points, replaceable in tests.
var (
	paLibInitialize             = portaudio.Initialize
	paLibTerminate              = portaudio.Terminate
	paLibDevicesFunc            = portaudio.Devices
	paLibDefaultInputDeviceFunc = portaudio.DefaultInputDevice
	paDevicesFunc               = paDevices
	paOpenStreamFunc            = openStream
)

// inputStream is the part of *portaudio.Stream the capture drives.
type inputStream interface {
	Start() error
	Stop() error
	Close() error
}

func openStream(params portaudio.StreamParameters, callback func([]float32)) (inputStream, error) {
	stream, err := portaudio.OpenStream(params, callback)
	if err != nil {
		return nil, err
	}
	return stream, nil
}

// Device describes one host audio device.
type Device struct {
	ID                      int
	Name                    string
	HostAPI                 string
	MaxInputChannels        int
	MaxOutputChannels       int
	DefaultSampleRate       float64
	DefaultLowInputLatency  time.Duration
	DefaultHighInputLatency time.Duration
}

// IsInput reports whether the device can capture.
func (d Device) IsInput() bool {
	return d.MaxInputChannels > 0
}

// Kind returns "Input", "Output", "Input/Output" or "" for a device with no
// channels.
func (d Device) Kind() string {
	switch {
	case d.MaxInputChannels > 0 && d.MaxOutputChannels > 0:
		return "Input/Output"
	case d.MaxInputChannels > 0:
		return "Input"
	case d.MaxOutputChannels > 0:
		return "Output"
	default:
		return ""
	}
}

// Initialize sets up the PortAudio subsystem.
// This must be called before any audio operations and paired with a Terminate() call.
func Initialize() error {
	if err := paLibInitialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return nil
}

// Terminate cleanly shuts down the PortAudio subsystem.
// This should be deferred immediately after Initialize().
func Terminate() error {
	if err := paLibTerminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}

// paDevices returns all available PortAudio devices, never a nil slice on
// success.
func paDevices() ([]*portaudio.DeviceInfo, error) {
	devices, err := paLibDevicesFunc()
	if err != nil {
		return nil, err
	}
	if devices == nil {
		devices = []*portaudio.DeviceInfo{}
	}
	return devices, nil
}

func toDevice(id int, info *portaudio.DeviceInfo) Device {
	d := Device{
		ID:                      id,
		Name:                    info.Name,
		MaxInputChannels:        info.MaxInputChannels,
		MaxOutputChannels:       info.MaxOutputChannels,
		DefaultSampleRate:       info.DefaultSampleRate,
		DefaultLowInputLatency:  info.DefaultLowInputLatency,
		DefaultHighInputLatency: info.DefaultHighInputLatency,
	}
	if info.HostApi != nil {
		d.HostAPI = info.HostApi.Name
	}
	return d
}

// HostDevices returns every device known to PortAudio, with ID equal to its
// index. PortAudio must be initialized.
func HostDevices() ([]Device, error) {
	infos, err := paDevicesFunc()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	devices := make([]Device, len(infos))
	for i, info := range infos {
		devices[i] = toDevice(i, info)
	}
	return devices, nil
}

// InputDevices returns only the devices that can capture.
func InputDevices() ([]Device, error) {
	all, err := HostDevices()
	if err != nil {
		return nil, err
	}
	inputs := all[:0]
	for _, d := range all {
		if d.IsInput() {
			inputs = append(inputs, d)
		}
	}
	return inputs, nil
}

// InputDevice retrieves the audio input device for the given device ID.
// If deviceID is DefaultDeviceID (-1), returns the system default input device.
// Returns an error if the device ID is invalid or the device cannot capture.
func InputDevice(deviceID int) (*portaudio.DeviceInfo, error) {
	devices, err := paDevicesFunc()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	if deviceID == DefaultDeviceID {
		device, err := paLibDefaultInputDeviceFunc()
		if err != nil {
			return nil, fmt.Errorf("no default input device: %w", err)
		}
		return device, nil
	}

	if deviceID < 0 || deviceID >= len(devices) {
		return nil, fmt.Errorf("invalid device ID: %d", deviceID)
	}
	device := devices[deviceID]
	if device.MaxInputChannels < 1 {
		return nil, fmt.Errorf("device %d (%s) does not support input", deviceID, device.Name)
	}
	return device, nil
}

// ListDevices writes information about all available audio devices to w.
// For each device, it shows:
// - Device ID and name
// - Device type (Input/Output/Input+Output)
// - Channel count
// - Default sample rate
// - Latency ranges
func ListDevices(w io.Writer) error {
	devices, err := HostDevices()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nAvailable Audio Devices\n\n")

	for _, device := range devices {
		fmt.Fprintf(w, "[%d] %s (%s)\n", device.ID, device.Name, device.Kind())
		if device.HostAPI != "" {
			fmt.Fprintf(w, "    Host API: %s\n", device.HostAPI)
		}
		fmt.Fprintf(w, "    Input channels: %d, Output channels: %d\n", device.MaxInputChannels, device.MaxOutputChannels)
		fmt.Fprintf(w, "    Default sample rate: %.0f Hz\n", device.DefaultSampleRate)
		fmt.Fprintf(w, "    Latency: Low=%.2fms, High=%.2fms\n",
			device.DefaultLowInputLatency.Seconds()*1000,
			device.DefaultHighInputLatency.Seconds()*1000)
		fmt.Fprintln(w)
	}

	return nil
}
