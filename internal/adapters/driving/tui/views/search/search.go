// Package search is the retrieve view: type a query, browse the top-k chunks.
package search

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// DefaultTopK is the number of chunks retrieved per query.
const DefaultTopK = 5

// MaxTopK caps the +/- adjustment.
const MaxTopK = 50

type focus int

const (
	focusQuery focus = iota
	focusResults
)

// View is the retrieve screen.
type View struct {
	styles    *styles.Styles
	keys      *keymap.KeyMap
	input     *input.Prompt
	list      *list.ResultList
	statusbar *status.Bar

	retrieval driving.RetrievalService
	topK      int
	ctx       context.Context

	focus     focus
	lastQuery string
	err       error

	width  int
	height int
	ready  bool
}

// NewView creates a retrieve view with the query input focused.
func NewView(s *styles.Styles, km *keymap.KeyMap, retrieval driving.RetrievalService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:    s,
		keys:      km,
		input:     input.NewSearchInput(s),
		list:      list.NewResultList(s),
		statusbar: status.NewBar(s, km),
		retrieval: retrieval,
		topK:      DefaultTopK,
		ctx:       context.Background(),
		focus:     focusQuery,
		width:     80,
		height:    24,
	}
}

// WithTopK sets the number of chunks retrieved per query. Non-positive values are ignored.
func (v *View) WithTopK(k int) *View {
	if k > 0 {
		v.topK = min(k, MaxTopK)
	}
	return v
}

// WithContext sets the context passed to the retrieval service.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init focuses the query input.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles keys, window sizes and retrieval results.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil
	case tea.KeyMsg:
		return v.handleKey(msg)
	case messages.RetrievalCompleted:
		v.applyResults(msg)
		return v, nil
	case messages.ErrorOccurred:
		v.fail(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	if v.focus == focusQuery {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	if keymap.Matches(k, v.keys.Back) {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focus == focusQuery {
		if keymap.Matches(k, v.keys.Search) {
			return v, v.submit(v.input.Value())
		}
		v.input, _ = v.input.Update(msg)
		return v, nil
	}

	switch {
	case keymap.Matches(k, v.keys.Expand):
		if v.list.SelectedResult() != nil {
			v.list.ToggleExpanded()
		}
	case keymap.Matches(k, v.keys.Up):
		v.list.MoveUp()
	case keymap.Matches(k, v.keys.Down):
		v.list.MoveDown()
	case keymap.Matches(k, v.keys.NewSearch):
		v.focusQueryInput()
	case keymap.Matches(k, v.keys.MoreResults):
		return v, v.resize(v.topK + 1)
	case keymap.Matches(k, v.keys.FewerResults):
		return v, v.resize(v.topK - 1)
	}
	return v, nil
}

// submit starts retrieval for query and moves focus to the results.
func (v *View) submit(query string) tea.Cmd {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	v.lastQuery = query
	v.focus = focusResults
	v.input.Blur()
	v.statusbar.SetState(status.StateSearching)
	return v.retrieve(query, v.topK)
}

// resize changes top_k within [1, MaxTopK] and reruns the last query.
func (v *View) resize(k int) tea.Cmd {
	if k < 1 || k > MaxTopK || k == v.topK {
		return nil
	}
	v.topK = k
	if v.lastQuery == "" {
		return nil
	}
	v.statusbar.SetState(status.StateSearching)
	return v.retrieve(v.lastQuery, k)
}

// retrieve runs the query off the UI goroutine.
func (v *View) retrieve(query string, topK int) tea.Cmd {
	retrieval, ctx := v.retrieval, v.ctx
	return func() tea.Msg {
		if retrieval == nil {
			return messages.ErrorOccurred{Err: ErrNoRetrievalService}
		}
		results, err := retrieval.Retrieve(ctx, query, topK)
		return messages.RetrievalCompleted{Query: query, Results: results, Err: err}
	}
}

func (v *View) applyResults(msg messages.RetrievalCompleted) {
	if msg.Err != nil {
		v.fail(msg.Err)
		return
	}
	v.err = nil
	v.list.SetResults(msg.Results)
	v.statusbar.SetMessage("")
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResultCount(len(msg.Results))
	v.focus = focusResults
	v.input.Blur()
}

func (v *View) fail(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

func (v *View) focusQueryInput() {
	v.focus = focusQuery
	v.input.SetValue("")
	v.input.Focus()
}

// View renders the header, input, result list and footer.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("sercha-rag") + v.styles.Muted.Render("  retrieve"),
		"",
		v.input.View(),
		"",
	}
	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}
	if v.lastQuery != "" && v.err == nil {
		sections = append(sections, v.styles.Muted.Render(v.summary()), "")
	}
	sections = append(sections, v.list.View(), "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) summary() string {
	return fmt.Sprintf("%d of top %d chunks for %q", v.list.Count(), v.topK, v.lastQuery)
}

// SetDimensions lays the components out for a width x height terminal.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, max(height-12, 3))
	v.statusbar.SetWidth(width)
}

// Ready reports whether the view has received its dimensions.
func (v *View) Ready() bool {
	return v.ready
}

// TopK returns the number of chunks requested per query.
func (v *View) TopK() int {
	return v.topK
}

// Query returns the text in the query input.
func (v *View) Query() string {
	return v.input.Value()
}

// LastQuery returns the most recently submitted query.
func (v *View) LastQuery() string {
	return v.lastQuery
}

// Results returns the retrieved chunks.
func (v *View) Results() []domain.RetrievalResult {
	return v.list.Results()
}

// SelectedIndex returns the index of the highlighted chunk.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// SelectedResult returns the highlighted chunk, or nil.
func (v *View) SelectedResult() *domain.RetrievalResult {
	return v.list.SelectedResult()
}

// Err returns the last retrieval error.
func (v *View) Err() error {
	return v.err
}

// Reset clears results and focuses the query input.
func (v *View) Reset() {
	v.focusQueryInput()
	v.lastQuery = ""
	v.list.SetResults(nil)
	v.err = nil
	v.statusbar.Clear()
}

// InputFocused reports whether keys go to the query input.
func (v *View) InputFocused() bool {
	return v.focus == focusQuery
}
