package tui

import "github.com/charmbracelet/bubbles/key"

type mainKeys struct {
	Prev, Next, Press  key.Binding
	Start, Edit, Theme key.Binding
	Quit               key.Binding
}

var mainKeyMap = mainKeys{
	Prev:  key.NewBinding(key.WithKeys("left", "h", "shift+tab"), key.WithHelp("←/h", "prev")),
	Next:  key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→/l", "next")),
	Press: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "press")),
	Start: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
	Edit:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "customize")),
	Theme: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k mainKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Press, k.Start, k.Edit, k.Theme, k.Quit}
}

func (k mainKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Prev, k.Next, k.Press}, {k.Start, k.Edit, k.Theme, k.Quit}}
}

type editKeys struct {
	NextField, PrevField key.Binding
	Up, Down             key.Binding
	Add, Remove          key.Binding
	Save, Cancel         key.Binding
}

var editKeyMap = editKeys{
	NextField: key.NewBinding(key.WithKeys("tab", "enter"), key.WithHelp("tab", "next field")),
	PrevField: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
	Up:        key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "row up")),
	Down:      key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "row down")),
	Add:       key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "add row")),
	Remove:    key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "remove row")),
	Save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
}

func (k editKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.NextField, k.Add, k.Remove, k.Save, k.Cancel}
}

func (k editKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.NextField, k.PrevField, k.Up, k.Down}, {k.Add, k.Remove, k.Save, k.Cancel}}
}
