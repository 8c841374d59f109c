package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	ArrowUp   key.Binding
	ArrowDown key.Binding
	Open      key.Binding
	Filter    key.Binding
	Lock      key.Binding
	Settings  key.Binding
	Security  key.Binding
	Reveal    key.Binding
	Back      key.Binding
	Yes       key.Binding
	No        key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	ArrowUp:   key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
	ArrowDown: key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
	Open:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Filter:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	Lock:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "lock")),
	Settings:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "settings")),
	Security:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "device security")),
	Reveal:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "show password")),
	Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Yes:       key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "continue")),
	No:        key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),
	Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
}

// helpLine renders bindings as "key desc  key desc".
func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, keyStyle.Render(h.Key)+" "+helpDescStyle.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
