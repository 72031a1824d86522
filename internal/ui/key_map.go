package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	back      key.Binding
	search    key.Binding
	sortDate  key.Binding
	sortTitle key.Binding
	scope     key.Binding
	refresh   key.Binding
	upload    key.Binding
	remove    key.Binding
	login     key.Binding
	logout    key.Binding
	yes       key.Binding
	no        key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		sortDate:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "sort by date")),
		sortTitle: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "sort by title")),
		scope:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mine/all")),
		refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		upload:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upload")),
		remove:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		login:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "login")),
		logout:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "logout")),
		yes:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "no")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.search, k.sortDate, k.sortTitle, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.search, k.sortDate, k.sortTitle, k.scope, k.refresh},
		{k.upload, k.remove, k.login, k.logout, k.quit},
	}
}
