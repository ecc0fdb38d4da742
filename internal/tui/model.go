// SPDX-License-Identifier: MIT

// Package tui is the interactive consumer of the analyzer. The bubbletea
// program owns the tick timer: every tick runs one analysis cycle on the UI
// goroutine and redraws the latest levels.
package tui

import (
	"fmt"
	"strings"
	"time"

	"audiolyzer/internal/analysis"
	applog "audiolyzer/internal/log"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Bin count bounds for the +/- keys.
const (
	minBins = 2
	maxBins = 4096
)

const (
	springFrequency = 8.5
	springDamping   = 0.72
)

// DeviceSwitcher is the part of the capture the UI drives.
type DeviceSwitcher interface {
	DeviceID() int
	DeviceName() string
	SwitchDevice(id int) error
}

// Options configures a Model.
type Options struct {
	Runner  *analysis.Runner
	Devices DeviceSwitcher // nil hides the device popup
	Mode    Mode
	Spring  bool
}

type tickMsg time.Time

// Model is the spectrum screen.
type Model struct {
	runner  *analysis.Runner
	devices DeviceSwitcher

	mode      Mode
	bins      int
	useSpring bool
	spring    springField
	fps       FPSTracker

	levels  []float64 // copy of the last frame
	columns []float64

	width, height int
	popup         deviceList
	showPopup     bool
	status        string
	statusErr     bool
}

// New returns a Model driving opts.Runner.
func New(opts Options) *Model {
	fps := int(time.Second / opts.Runner.Interval())
	return &Model{
		runner:    opts.Runner,
		devices:   opts.Devices,
		mode:      opts.Mode,
		bins:      opts.Runner.Engine().Bins(),
		useSpring: opts.Spring,
		spring:    newSpringField(max(fps, 1), springFrequency, springDamping),
		popup:     newDeviceList(0, 0),
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.runner.Interval(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the tick loop.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles ticks, resizes and keys.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.fps.Tick(time.Time(msg))
		if frame, ok := m.runner.Tick(); ok {
			m.levels = append(m.levels[:0], frame.Levels...)
		}
		m.layout()
		return m, m.tick()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.popup.resize(max(msg.Width/2, 20), max(m.bodyHeight()-4, 1))
		m.layout()

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, keys.Quit) {
		return tea.Quit
	}

	if m.showPopup {
		switch {
		case key.Matches(msg, keys.Up):
			m.popup.up()
		case key.Matches(msg, keys.Down):
			m.popup.down()
		case key.Matches(msg, keys.Select):
			m.switchDevice()
		case key.Matches(msg, keys.Back), key.Matches(msg, keys.Devices):
			m.showPopup = false
		}
		return nil
	}

	switch {
	case key.Matches(msg, keys.Window):
		w := m.runner.Engine().CycleWindow()
		m.setStatus(fmt.Sprintf("window: %s", w), false)
	case key.Matches(msg, keys.Devices):
		if m.devices != nil {
			m.popup.load(m.devices.DeviceID())
			m.showPopup = true
		}
	case key.Matches(msg, keys.Mode):
		m.mode = m.mode.Next()
		m.setStatus(fmt.Sprintf("mode: %s", m.mode), false)
	case key.Matches(msg, keys.More):
		m.resize(min(m.bins*2, maxBins))
	case key.Matches(msg, keys.Fewer):
		m.resize(max(m.bins/2, minBins))
	}
	return nil
}

func (m *Model) resize(bins int) {
	if bins == m.bins {
		return
	}
	if err := m.runner.Resize(bins); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.bins = bins
	m.setStatus(fmt.Sprintf("bins: %d", bins), false)
}

func (m *Model) switchDevice() {
	dev, ok := m.popup.selected()
	if !ok {
		return
	}
	if err := m.devices.SwitchDevice(dev.ID); err != nil {
		applog.Errorf("TUI: Failed to switch to device %d: %v", dev.ID, err)
		m.setStatus(err.Error(), true)
		return
	}
	m.showPopup = false
	m.levels = m.levels[:0]
	m.setStatus(fmt.Sprintf("device: %s", dev.Name), false)
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// layout resamples the levels onto the screen columns and eases them. It
// runs once per tick so the spring advances at the tick rate.
func (m *Model) layout() {
	m.columns = Columns(m.columns, m.levels, m.width)
	if m.useSpring {
		m.spring.apply(m.columns)
	}
}

// bodyHeight leaves room for the header, a blank line and the footer.
func (m *Model) bodyHeight() int {
	return max(m.height-3, 1)
}

func (m *Model) header() string {
	info := fmt.Sprintf("%s • %s • %d bins • %.1f fps",
		m.runner.Engine().Window(), m.mode, m.bins, m.fps.FPS())
	if m.devices != nil {
		info += " • " + m.devices.DeviceName()
	}
	return titleStyle.Render("audiolyzer") + " " + infoStyle.Render(info)
}

func (m *Model) footer() string {
	if m.status == "" {
		return helpStyle.Render(keys.helpLine())
	}
	if m.statusErr {
		return errorStyle.Render(m.status)
	}
	return helpStyle.Render(m.status + " • " + keys.helpLine())
}

// View renders the spectrum, or the device popup over it.
func (m *Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	body := m.bodyHeight()
	var content string
	if m.showPopup {
		content = lipgloss.Place(m.width, body, lipgloss.Center, lipgloss.Center, m.popup.View())
	} else {
		content = barStyle.Render(Render(m.columns, body, m.mode))
	}

	var sb strings.Builder
	sb.WriteString(m.header())
	sb.WriteString("\n\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(m.footer())
	return sb.String()
}

// Run starts the full-screen program and blocks until the user quits.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
