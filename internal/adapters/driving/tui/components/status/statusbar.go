// Package status renders the one-line footer shared by the chat and retrieve views.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
)

// State is what the footer reports on its left side.
type State string

const (
	StateReady     State = "ready"
	StateSearching State = "searching"
	StateThinking  State = "thinking"
	StateIndexing  State = "indexing"
	StateError     State = "error"
	StateResults   State = "results"
)

// busyLabels are shown while a request is in flight; a message overrides none of them.
var busyLabels = map[State]string{
	StateSearching: "Retrieving chunks...",
	StateThinking:  "Thinking...",
	StateIndexing:  "Indexing documents...",
}

// Bar is the footer: state on the left, key hints on the right.
type Bar struct {
	styles      *styles.Styles
	keymap      *keymap.KeyMap
	hints       []key.Binding
	state       State
	message     string
	resultCount int
	width       int
}

// NewBar creates a footer in the ready state.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init implements tea.Model.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update is a no-op; the owning view drives the bar through its setters.
func (s *Bar) Update(tea.Msg) (*Bar, tea.Cmd) {
	return s, nil
}

// View renders the footer padded to the bar width.
func (s *Bar) View() string {
	left := s.renderState()
	right := s.styles.Muted.Render(keymap.Hints(s.bindings()))

	gap := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *Bar) renderState() string {
	if label, ok := busyLabels[s.state]; ok {
		style := s.styles.Muted
		if s.state == StateIndexing {
			style = s.styles.Warning
		}
		return style.Render(label)
	}

	switch {
	case s.state == StateError && s.message != "":
		return s.styles.Error.Render("Error: " + s.message)
	case s.state == StateError:
		return s.styles.Error.Render("Error")
	case s.message != "":
		return s.styles.Normal.Render(s.message)
	case s.resultCount > 0:
		return s.styles.Normal.Render(fmt.Sprintf("%d chunks", s.resultCount))
	default:
		return s.styles.Muted.Render("Ready")
	}
}

func (s *Bar) bindings() []key.Binding {
	switch {
	case s.hints != nil:
		return s.hints
	case s.state == StateResults && s.resultCount > 0:
		return s.keymap.ResultsHelp()
	default:
		return s.keymap.ShortHelp()
	}
}

// SetHints fixes the key hints shown on the right. Nil restores the state-based defaults.
func (s *Bar) SetHints(bindings []key.Binding) {
	s.hints = bindings
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets the text shown instead of the default state label.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetResultCount sets the number of retrieved chunks.
func (s *Bar) SetResultCount(count int) {
	s.resultCount = count
}

// ResultCount returns the number of retrieved chunks.
func (s *Bar) ResultCount() int {
	return s.resultCount
}

// SetWidth sets the bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the bar width.
func (s *Bar) Width() int {
	return s.width
}

// Clear returns to the ready state. Hints are kept.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.resultCount = 0
}
