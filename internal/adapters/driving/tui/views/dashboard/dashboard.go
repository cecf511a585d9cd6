// Package dashboard provides the index status view for the TUI.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// ErrNoIndexingService indicates that rebuild and verify are unavailable.
var ErrNoIndexingService = errors.New("indexing service not available")

// View shows store figures and runs rebuild and verify.
type View struct {
	styles *styles.Styles
	keys   *keymap.KeyMap

	stats    driving.StatsService
	indexing driving.IndexingService
	ctx      context.Context

	current *domain.SystemStats
	build   *domain.BuildReport
	check   *domain.ConsistencyReport
	busy    string
	err     error

	width  int
	height int
	ready  bool
}

// NewView creates a dashboard view.
func NewView(s *styles.Styles, stats driving.StatsService, indexing driving.IndexingService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:   s,
		keys:     keymap.DefaultKeyMap(),
		stats:    stats,
		indexing: indexing,
		ctx:      context.Background(),
		width:    80,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the current figures.
func (v *View) Init() tea.Cmd {
	return v.Refresh()
}

// Refresh returns a command that reloads the figures.
func (v *View) Refresh() tea.Cmd {
	stats, ctx := v.stats, v.ctx
	return func() tea.Msg {
		if stats == nil {
			return messages.StatsLoaded{Err: domain.ErrIndexNotLoaded}
		}
		s, err := stats.Stats(ctx)
		return messages.StatsLoaded{Stats: s, Err: err}
	}
}

// Update handles messages for the dashboard view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.StatsLoaded:
		v.err = msg.Err
		if msg.Err == nil {
			v.current = msg.Stats
		}
		return v, nil

	case messages.BuildCompleted:
		v.busy = ""
		v.build = msg.Report
		v.err = msg.Err
		// A partial build still publishes an index worth showing.
		return v, v.Refresh()

	case messages.VerifyCompleted:
		v.busy = ""
		v.err = msg.Err
		if msg.Err == nil {
			v.check = msg.Report
		}
		return v, nil

	case messages.ErrorOccurred:
		v.busy = ""
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch k := msg.String(); {
	case keymap.Matches(k, v.keys.Rebuild):
		if v.busy != "" {
			return v, nil
		}
		if v.indexing == nil {
			v.err = ErrNoIndexingService
			return v, nil
		}
		v.busy = "Rebuilding index..."
		v.err = nil
		return v, v.rebuild()
	case keymap.Matches(k, v.keys.Verify):
		if v.busy != "" {
			return v, nil
		}
		if v.indexing == nil {
			v.err = ErrNoIndexingService
			return v, nil
		}
		v.busy = "Verifying stores..."
		v.err = nil
		return v, v.verify()
	case keymap.Matches(k, v.keys.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, nil
}

func (v *View) rebuild() tea.Cmd {
	indexing, ctx := v.indexing, v.ctx
	return func() tea.Msg {
		report, err := indexing.TryBuild(ctx)
		return messages.BuildCompleted{Report: report, Err: err}
	}
}

func (v *View) verify() tea.Cmd {
	indexing, ctx := v.indexing, v.ctx
	return func() tea.Msg {
		report, err := indexing.Verify(ctx)
		return messages.VerifyCompleted{Report: report, Err: err}
	}
}

// View renders the dashboard.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Dashboard"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 10), 60)))
	b.WriteString("\n\n")

	if v.current == nil {
		b.WriteString(v.styles.Muted.Render("No index statistics loaded"))
		b.WriteString("\n")
	} else {
		b.WriteString(v.formatField("Documents", fmt.Sprintf("%d", v.current.Documents)))
		b.WriteString(v.formatField("Chunks", fmt.Sprintf("%d", v.current.Chunks)))
		b.WriteString(v.formatField("Vectors", fmt.Sprintf("%d", v.current.Vectors)))
		b.WriteString(v.formatField("Indexed", fmt.Sprintf("%d", v.current.IndexedVectors)))
		b.WriteString(v.formatField("Dimension", fmt.Sprintf("%d", v.current.Dimension)))
		buildID := v.current.BuildID
		if buildID == "" {
			buildID = "none"
		}
		b.WriteString(v.formatField("Build", buildID))
	}

	if v.build != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render("Last build"))
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render(fmt.Sprintf(
			"  %d documents, %d chunks, %d vectors in %s",
			v.build.Documents, v.build.Chunks, v.build.Vectors, v.build.Duration.Round(time.Millisecond),
		)))
		b.WriteString("\n")
		if v.build.Partial {
			b.WriteString(v.styles.Warning.Render("  partial: metadata was not activated"))
			b.WriteString("\n")
		}
	}

	if v.check != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render("Consistency"))
		b.WriteString("\n")
		if v.check.Consistent() {
			b.WriteString(v.styles.Success.Render(fmt.Sprintf(
				"  consistent: %d vectors, %d metadata rows", v.check.IndexCount, v.check.MetadataCount)))
		} else {
			b.WriteString(v.styles.Warning.Render(fmt.Sprintf(
				"  inconsistent: %d missing metadata, %d missing vectors",
				len(v.check.MissingMetadata), len(v.check.MissingVectors))))
		}
		b.WriteString("\n")
	}

	if v.busy != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Warning.Render(v.busy))
		b.WriteString("\n")
	}

	if v.err != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render(keymap.Hints(v.keys.DashboardHelp())))
	return b.String()
}

func (v *View) formatField(label, value string) string {
	return v.styles.Subtitle.Render(fmt.Sprintf("%-12s", label+":")) + " " + v.styles.Normal.Render(value) + "\n"
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Stats returns the last loaded figures.
func (v *View) Stats() *domain.SystemStats {
	return v.current
}

// LastBuild returns the report of the last rebuild run from this view.
func (v *View) LastBuild() *domain.BuildReport {
	return v.build
}

// LastCheck returns the last consistency report.
func (v *View) LastCheck() *domain.ConsistencyReport {
	return v.check
}

// Busy reports whether a rebuild or verify is running.
func (v *View) Busy() bool {
	return v.busy != ""
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
