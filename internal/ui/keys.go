package ui

import "github.com/charmbracelet/bubbles/key"

// Key bindings
var keys = struct {
	Quit       key.Binding
	ForceQuit  key.Binding
	Debug      key.Binding
	Up         key.Binding
	Down       key.Binding
	Enter      key.Binding
	Escape     key.Binding
	Focus      key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding
	NextSource key.Binding
	Source     key.Binding
	Home       key.Binding
	Expand     key.Binding
	Copy       key.Binding
	Admin      key.Binding
	Refresh    key.Binding
	NextField  key.Binding
	PrevField  key.Binding
}{
	Quit:       key.NewBinding(key.WithKeys("q")),
	ForceQuit:  key.NewBinding(key.WithKeys("ctrl+c")),
	Debug:      key.NewBinding(key.WithKeys("?")),
	Up:         key.NewBinding(key.WithKeys("up", "k")),
	Down:       key.NewBinding(key.WithKeys("down", "j")),
	Enter:      key.NewBinding(key.WithKeys("enter", "o")),
	Escape:     key.NewBinding(key.WithKeys("esc")),
	Focus:      key.NewBinding(key.WithKeys("/", "i")),
	NextPage:   key.NewBinding(key.WithKeys("right", "l", "n")),
	PrevPage:   key.NewBinding(key.WithKeys("left", "h", "p")),
	NextSource: key.NewBinding(key.WithKeys("tab")),
	Source:     key.NewBinding(key.WithKeys("1", "2", "3")),
	Home:       key.NewBinding(key.WithKeys("H", "ctrl+g")),
	Expand:     key.NewBinding(key.WithKeys("e")),
	Copy:       key.NewBinding(key.WithKeys("y")),
	Admin:      key.NewBinding(key.WithKeys("a", "ctrl+a")),
	Refresh:    key.NewBinding(key.WithKeys("ctrl+r")),
	NextField:  key.NewBinding(key.WithKeys("tab", "down")),
	PrevField:  key.NewBinding(key.WithKeys("shift+tab", "up")),
}
