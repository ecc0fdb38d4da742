// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"strings"

	"audiolyzer/internal/audio"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// listInputDevices is replaceable in tests.
var listInputDevices = audio.InputDevices

// deviceList is the input device popup shown over the spectrum.
type deviceList struct {
	devices       []audio.Device
	selectedIndex int
	viewport      viewport.Model
	err           error
}

func newDeviceList(width, height int) deviceList {
	vp := viewport.New(width, height)
	vp.Style = lipgloss.NewStyle()
	return deviceList{viewport: vp}
}

// load refreshes the device list and preselects the device with currentID.
func (d *deviceList) load(currentID int) {
	d.devices, d.err = listInputDevices()
	d.selectedIndex = 0
	for i, dev := range d.devices {
		if dev.ID == currentID {
			d.selectedIndex = i
			break
		}
	}
	d.refresh()
}

func (d *deviceList) resize(width, height int) {
	d.viewport.Width = width
	d.viewport.Height = height
	d.refresh()
}

func (d *deviceList) up() {
	if d.selectedIndex > 0 {
		d.selectedIndex--
		d.refresh()
	}
}

func (d *deviceList) down() {
	if d.selectedIndex < len(d.devices)-1 {
		d.selectedIndex++
		d.refresh()
	}
}

// selected returns the highlighted device, if any.
func (d *deviceList) selected() (audio.Device, bool) {
	if d.selectedIndex < 0 || d.selectedIndex >= len(d.devices) {
		return audio.Device{}, false
	}
	return d.devices[d.selectedIndex], true
}

func (d *deviceList) refresh() {
	d.viewport.SetContent(d.render())

	// Keep the highlighted entry on screen; each entry is two lines.
	line := d.selectedIndex * 2
	switch {
	case line < d.viewport.YOffset:
		d.viewport.SetYOffset(line)
	case line+1 >= d.viewport.YOffset+d.viewport.Height:
		d.viewport.SetYOffset(line + 2 - d.viewport.Height)
	}
}

func (d *deviceList) render() string {
	if d.err != nil {
		return fmt.Sprintf("Error: %v", d.err)
	}
	if len(d.devices) == 0 {
		return "No input devices found."
	}

	var sb strings.Builder
	for i, device := range d.devices {
		marker := " "
		if i == d.selectedIndex {
			marker = "▶"
		}
		entry := fmt.Sprintf("%s [%d] %s\n    %s, %d in, %.0f Hz\n",
			marker, device.ID, device.Name, device.HostAPI, device.MaxInputChannels, device.DefaultSampleRate)
		if i == d.selectedIndex {
			entry = highlightStyle.Render(entry)
		}
		sb.WriteString(entry)
	}
	return sb.String()
}

func (d *deviceList) View() string {
	return popupStyle.Render(titleStyle.Render("Input Devices") + "\n\n" + d.viewport.View())
}
