// Package keymap holds the TUI keybindings and the footer hints built from them.
package keymap

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap groups every binding the views react to.
type KeyMap struct {
	Quit   key.Binding
	Help   key.Binding
	Back   key.Binding
	Cancel key.Binding

	// Search submits the query or question in the input.
	Search key.Binding

	Up     key.Binding
	Down   key.Binding
	Select key.Binding

	// NewSearch returns focus to the query input from the results list.
	NewSearch key.Binding

	// Expand toggles the full text of the selected chunk.
	Expand key.Binding

	// MoreResults and FewerResults change top_k and rerun the last query.
	MoreResults  key.Binding
	FewerResults key.Binding

	// Rebuild reindexes the documents directory.
	Rebuild key.Binding

	// Verify checks index and metadata consistency.
	Verify key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit:   bind("q", "quit", "q", "ctrl+c"),
		Help:   bind("?", "help", "?"),
		Back:   bind("esc", "back", "esc"),
		Cancel: bind("esc", "cancel", "esc"),

		Search: bind("enter", "search", "enter"),

		Up:     bind("↑/k", "up", "up", "k"),
		Down:   bind("↓/j", "down", "down", "j"),
		Select: bind("enter", "select", "enter"),

		NewSearch:    bind("n", "new search", "n"),
		Expand:       bind("enter", "expand", "enter"),
		MoreResults:  bind("+", "more", "+", "="),
		FewerResults: bind("-", "fewer", "-"),

		Rebuild: bind("r", "rebuild", "r"),
		Verify:  bind("v", "verify", "v"),
	}
}

// ShortHelp is the footer shown when no view-specific hints apply.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// ResultsHelp is the footer for a populated retrieve view.
func (k *KeyMap) ResultsHelp() []key.Binding {
	return []key.Binding{k.NewSearch, k.Up, k.Expand, k.MoreResults, k.FewerResults, k.Back}
}

// ChatHelp is the footer for the chat view.
func (k *KeyMap) ChatHelp() []key.Binding {
	return []key.Binding{k.Search, k.Back, k.Quit}
}

// DashboardHelp is the footer for the dashboard.
func (k *KeyMap) DashboardHelp() []key.Binding {
	return []key.Binding{k.Rebuild, k.Verify, k.Back}
}

// FullHelp groups bindings for the help screen.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Search, k.Back, k.Cancel},
		{k.MoreResults, k.FewerResults},
		{k.Help, k.Quit},
	}
}

// Matches reports whether keyStr triggers binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}

// Hints renders bindings as "key: desc" pairs for a footer line.
func Hints(bindings []key.Binding) string {
	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, h.Key+": "+h.Desc)
	}
	return strings.Join(hints, " | ")
}
