package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"zsnapfree/internal/recompute"
)

type keyMap struct {
	First  key.Binding
	Last   key.Binding
	Prev   key.Binding
	Next   key.Binding
	Toggle key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		First: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home/g", "first"),
		),
		Last: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end/G", "last"),
		),
		Prev: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Next: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "space", "enter"),
			key.WithHelp("space/enter", "mark"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q/esc", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Toggle, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.First, k.Last, k.Prev, k.Next}, {k.Toggle, k.Help, k.Quit}}
}

// action maps a key binding to the loop action it triggers.
func (k keyMap) action(msg tea.KeyMsg) (recompute.Action, bool) {
	switch {
	case key.Matches(msg, k.First):
		return recompute.First, true
	case key.Matches(msg, k.Last):
		return recompute.Last, true
	case key.Matches(msg, k.Prev):
		return recompute.Prev, true
	case key.Matches(msg, k.Next):
		return recompute.Next, true
	case key.Matches(msg, k.Toggle):
		return recompute.Toggle, true
	case key.Matches(msg, k.Quit):
		return recompute.Exit, true
	}
	return 0, false
}
