package statsui

import "github.com/charmbracelet/bubbles/key"

type browseKeys struct {
	Prev       key.Binding
	Next       key.Binding
	WindowDown key.Binding
	WindowUp   key.Binding
	Filter     key.Binding
	Top        key.Binding
	Bottom     key.Binding
	Quit       key.Binding
}

func newBrowseKeys() browseKeys {
	return browseKeys{
		Prev:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev tab")),
		Next:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next tab")),
		WindowDown: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "smaller window")),
		WindowUp:   key.NewBinding(key.WithKeys("=", "+"), key.WithHelp("=", "larger window")),
		Filter:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filters")),
		Top:        key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:     key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k browseKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.WindowDown, k.WindowUp, k.Filter, k.Quit}
}

func (k browseKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Top, k.Bottom}}
}

type filterKeys struct {
	Apply     key.Binding
	Cancel    key.Binding
	NextField key.Binding
	PrevField key.Binding
}

func newFilterKeys() filterKeys {
	return filterKeys{
		Apply:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		NextField: key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		PrevField: key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
	}
}

func (k filterKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.NextField, k.PrevField, k.Apply, k.Cancel}
}

func (k filterKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
