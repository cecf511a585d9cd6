// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// DefaultTopK is the number of chunks handed to the model per question.
const DefaultTopK = 3

// ErrNoAnswerService indicates that answer generation is not configured.
var ErrNoAnswerService = errors.New("answer generation is not configured; set an LLM with 'sercha-rag settings'")

// Exchange is one question with its answer or error.
type Exchange struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// View is the chat view: a scrolling transcript above a question input.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.Prompt
	transcript viewport.Model
	statusbar  *status.Bar

	answers driving.AnswerService
	topK    int
	ctx     context.Context

	exchanges []Exchange
	pending   bool
	width     int
	height    int
	ready     bool
}

// NewView creates a chat view backed by answers.
func NewView(s *styles.Styles, km *keymap.KeyMap, answers driving.AnswerService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetHints(km.ChatHelp())

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		transcript: viewport.New(80, 16),
		statusbar:  bar,
		answers:    answers,
		topK:       DefaultTopK,
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
}

// WithContext sets the context used for answer requests.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// WithTopK sets the number of chunks used per question.
func (v *View) WithTopK(k int) *View {
	if k > 0 {
		v.topK = k
	}
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerCompleted:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case tea.KeyEnter:
		question := strings.TrimSpace(v.input.Value())
		if question == "" || v.pending {
			return v, nil
		}
		v.pending = true
		v.input.Reset()
		v.statusbar.SetState(status.StateThinking)
		v.exchanges = append(v.exchanges, Exchange{Question: question})
		v.refresh()
		return v, v.ask(question)

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask runs answer generation off the UI goroutine.
func (v *View) ask(question string) tea.Cmd {
	answers, ctx, topK := v.answers, v.ctx, v.topK
	return func() tea.Msg {
		if answers == nil {
			return messages.AnswerCompleted{Question: question, Err: ErrNoAnswerService}
		}
		answer, err := answers.Ask(ctx, question, topK)
		return messages.AnswerCompleted{Question: question, Answer: answer, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerCompleted) {
	v.pending = false

	// Fill the newest unanswered exchange for this question.
	for i := len(v.exchanges) - 1; i >= 0; i-- {
		ex := &v.exchanges[i]
		if ex.Question == msg.Question && ex.Answer == nil && ex.Err == nil {
			ex.Answer = msg.Answer
			ex.Err = msg.Err
			break
		}
	}

	if msg.Err != nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
	} else {
		v.statusbar.SetState(status.StateReady)
		v.statusbar.SetMessage(fmt.Sprintf("Answered in %.0fms", msg.Answer.Metrics.TotalLatencyMS))
	}
	v.refresh()
}

// refresh re-renders the transcript and scrolls to the newest exchange.
func (v *View) refresh() {
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.exchanges) == 0 {
		return v.styles.Muted.Render("Ask a question about your indexed documents.")
	}

	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))
	blocks := make([]string, 0, len(v.exchanges))
	for _, ex := range v.exchanges {
		var b strings.Builder
		b.WriteString(v.styles.Question.Render("You: "))
		b.WriteString(wrap.Render(ex.Question))
		b.WriteString("\n")

		switch {
		case ex.Err != nil:
			b.WriteString(v.styles.Error.Render("Error: " + ex.Err.Error()))
		case ex.Answer == nil:
			b.WriteString(v.styles.Muted.Render("Thinking..."))
		default:
			b.WriteString(v.styles.Answer.Render("Assistant: "))
			b.WriteString(wrap.Render(ex.Answer.Answer))
			b.WriteString("\n")
			b.WriteString(v.renderCitations(ex.Answer.Citations))
			b.WriteString(v.renderMetrics(ex.Answer.Metrics))
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

func (v *View) renderCitations(citations []domain.Citation) string {
	if len(citations) == 0 {
		return v.styles.Muted.Render("No sources retrieved.") + "\n"
	}

	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render("Sources"))
	b.WriteString("\n")
	for i, c := range citations {
		section := "N/A"
		if c.PageOrSection != nil {
			section = *c.PageOrSection
		}
		b.WriteString(v.styles.Citation.Render(
			fmt.Sprintf("[%d] %s | %s | vector_id=%d | ", i+1, c.DocumentName, section, c.VectorID),
		))
		if c.Score != nil {
			b.WriteString(v.styles.Score(*c.Score).Render(fmt.Sprintf("score=%.3f", *c.Score)))
		} else {
			b.WriteString(v.styles.Muted.Render("score=n/a"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) renderMetrics(m domain.AnswerMetrics) string {
	return v.styles.Metrics.Render(fmt.Sprintf(
		"retrieval %.0fms · llm %.0fms · total %.0fms · %d chunks",
		m.RetrievalMS, m.LLMCallMS, m.TotalLatencyMS, m.ChunksUsed,
	))
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	header := v.styles.Title.Render("sercha-rag") + v.styles.Muted.Render("  chat")
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		v.transcript.View(),
		"",
		v.input.View(),
		"",
		v.statusbar.View(),
	)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	// Header, input box and status bar take eight lines.
	v.transcript.Width = width
	v.transcript.Height = max(height-8, 3)
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.refresh()
}

// Exchanges returns the transcript so far.
func (v *View) Exchanges() []Exchange {
	return v.exchanges
}

// Pending reports whether an answer is being generated.
func (v *View) Pending() bool {
	return v.pending
}

// Reset clears the transcript and focuses the input.
func (v *View) Reset() {
	v.exchanges = nil
	v.pending = false
	v.input.Reset()
	v.input.Focus()
	v.statusbar.Clear()
	v.refresh()
}

// Ready returns whether the view has received its dimensions.
func (v *View) Ready() bool {
	return v.ready
}
