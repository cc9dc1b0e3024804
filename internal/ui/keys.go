package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Actions  key.Binding
	View     key.Binding
	Edit     key.Binding
	Delete   key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	Search   key.Binding
	Status   key.Binding
	Reload   key.Binding
	Back     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Actions:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "actions")),
		View:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "view")),
		Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		PrevPage: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
		NextPage: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Status:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "status")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Back:     key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap for the list screen
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Actions, k.View, k.Edit, k.Delete, k.PrevPage, k.NextPage, k.Search, k.Status, k.Reload, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Actions},
		{k.View, k.Edit, k.Delete},
		{k.PrevPage, k.NextPage, k.Search, k.Status},
		{k.Reload, k.Back, k.Quit},
	}
}
