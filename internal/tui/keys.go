// SPDX-License-Identifier: MIT
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Window  key.Binding
	Devices key.Binding
	Mode    key.Binding
	More    key.Binding
	Fewer   key.Binding
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Back    key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Window:  key.NewBinding(key.WithKeys("right", "w"), key.WithHelp("→", "window")),
	Devices: key.NewBinding(key.WithKeys("left", "d"), key.WithHelp("←", "devices")),
	Mode:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mode")),
	More:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "more bins")),
	Fewer:   key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "fewer bins")),
	Up:      key.NewBinding(key.WithKeys("up", "k")),
	Down:    key.NewBinding(key.WithKeys("down", "j")),
	Select:  key.NewBinding(key.WithKeys("enter")),
	Back:    key.NewBinding(key.WithKeys("esc")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) helpLine() string {
	bindings := []key.Binding{k.Window, k.Devices, k.Mode, k.More, k.Fewer, k.Quit}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
