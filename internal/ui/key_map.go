package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	voteUp   key.Binding
	voteDown key.Binding
	toggle   key.Binding
	next     key.Binding
	prev     key.Binding
	retry    key.Binding
	volUp    key.Binding
	volDown  key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		voteUp:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upvote")),
		voteDown: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "downvote")),
		toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		next:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next track")),
		prev:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev track")),
		retry:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry player")),
		volUp:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),
		volDown:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "volume down")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.voteUp, k.voteDown, k.toggle},
		{k.next, k.prev, k.retry, k.quit},
	}
}
