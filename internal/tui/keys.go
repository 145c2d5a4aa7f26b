package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/verte-zerg/tuistream/internal/exercise"
)

type keyMap struct {
	Quit     key.Binding
	Close    key.Binding
	Pause    key.Binding
	Exercise []key.Binding
}

func newKeyMap(bindings []exercise.Binding) keyMap {
	km := keyMap{
		Quit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Close: key.NewBinding(key.WithKeys("q", "enter", "esc"), key.WithHelp("q", "close")),
		Pause: key.NewBinding(key.WithKeys("esc", "p"), key.WithHelp("esc", "pause")),
	}
	for _, b := range bindings {
		km.Exercise = append(km.Exercise, key.NewBinding(
			key.WithKeys(b.Keys...),
			key.WithHelp(strings.Join(b.Keys, "/"), b.Help),
		))
	}
	return km
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	out := append([]key.Binding{}, k.Exercise...)
	return append(out, k.Pause, k.Quit)
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
