package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the list-mode bindings. Input and edit modes only react to a
// handful of keys and use the bindings at the bottom.
type keyMap struct {
	Up             key.Binding
	Down           key.Binding
	Toggle         key.Binding
	Delete         key.Binding
	Edit           key.Binding
	ToggleAll      key.Binding
	ClearCompleted key.Binding
	FilterAll      key.Binding
	FilterActive   key.Binding
	FilterDone     key.Binding
	NextFilter     key.Binding
	NewTask        key.Binding
	Help           key.Binding
	Quit           key.Binding

	// input and edit modes
	Submit    key.Binding
	Leave     key.Binding
	Blur      key.Binding
	ForceQuit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:             key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:           key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:         key.NewBinding(key.WithKeys(" ", "space", "x"), key.WithHelp("space/x", "toggle")),
		Delete:         key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Edit:           key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e/enter", "edit")),
		ToggleAll:      key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "toggle all")),
		ClearCompleted: key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear completed")),
		FilterAll:      key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "all")),
		FilterActive:   key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "active")),
		FilterDone:     key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "completed")),
		NextFilter:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "next filter")),
		NewTask:        key.NewBinding(key.WithKeys("n", "i", "tab"), key.WithHelp("n/tab", "new task")),
		Help:           key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Leave:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Blur:      key.NewBinding(key.WithKeys("up", "down", "tab", "shift+tab")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NewTask, k.Toggle, k.Edit, k.Delete, k.NextFilter, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NewTask, k.Help, k.Quit},
		{k.Toggle, k.Edit, k.Delete, k.ToggleAll, k.ClearCompleted},
		{k.FilterAll, k.FilterActive, k.FilterDone, k.NextFilter},
		{k.Submit, k.Leave},
	}
}
