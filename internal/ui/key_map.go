package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	toggle   key.Binding
	seekBack key.Binding
	seekFwd  key.Binding
	next     key.Binding
	prev     key.Binding
	enter    key.Binding
	expand   key.Binding
	back     key.Binding
	like     key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		seekBack: key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "-5%")),
		seekFwd:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "+5%")),
		next:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		prev:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		expand:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "expand")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		like:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "like")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.toggle, k.next, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.toggle, k.seekBack, k.seekFwd},
		{k.next, k.prev, k.enter},
		{k.expand, k.like, k.quit},
	}
}
