// Package list renders retrieved chunks as a scrollable, selectable list.
package list

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// rowHeight is the lines one chunk takes: title, preview and a gap.
const rowHeight = 3

// ResultList holds retrieved chunks and the selection. The owning view moves the cursor.
type ResultList struct {
	results  []domain.RetrievalResult
	selected int
	expanded bool
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates an empty list.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &ResultList{styles: s, width: 80, height: 10}
}

// View renders the visible window of chunks around the selection.
func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No results")
	}

	lines := []string{r.styles.Subtitle.Render(fmt.Sprintf("Chunks (%d)", len(r.results))), ""}

	start, end := r.window()
	for i := start; i < end; i++ {
		lines = append(lines, r.renderRow(i))
	}
	if r.expanded {
		if sel := r.SelectedResult(); sel != nil {
			lines = append(lines, "", r.renderDetail(sel))
		}
	}
	return strings.Join(lines, "\n")
}

// window returns the [start, end) slice of results that fits the height.
func (r *ResultList) window() (int, int) {
	visible := max((r.height-4)/rowHeight, 1)
	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	return start, min(start+visible, len(r.results))
}

func (r *ResultList) renderRow(i int) string {
	res := r.results[i]

	name := res.DocumentName
	if name == "" {
		name = "(untitled)"
	}
	nameWidth := max(r.width-30, 10)
	name = truncate(name, nameWidth)
	meta := fmt.Sprintf("#%d  %s", res.VectorID, formatScore(res.Score))

	var title string
	if i == r.selected {
		title = r.styles.Selected.Render(fmt.Sprintf("> %-*s  %s", nameWidth, name, meta))
	} else {
		metaStyle := r.styles.Muted
		if res.Score != nil {
			metaStyle = r.styles.Score(*res.Score)
		}
		title = r.styles.Normal.Render(fmt.Sprintf("  %-*s  ", nameWidth, name)) + metaStyle.Render(meta)
	}

	preview := truncate(strings.Join(strings.Fields(res.ChunkText), " "), max(r.width-6, 20))
	return title + "\n" + r.styles.Muted.Render("    "+preview)
}

// renderDetail shows the selected chunk's citation fields and full text in a box.
func (r *ResultList) renderDetail(res *domain.RetrievalResult) string {
	section := "N/A"
	if res.PageOrSection != nil {
		section = *res.PageOrSection
	}
	header := fmt.Sprintf("%s | %s | vector_id=%d | %s", res.DocumentName, section, res.VectorID, formatScore(res.Score))

	body := lipgloss.NewStyle().Width(max(r.width-4, 20)).Render(strings.TrimSpace(res.ChunkText))
	return r.styles.Border.Padding(0, 1).Render(
		r.styles.Subtitle.Render(res.ChunkID) + "\n" + r.styles.Muted.Render(header) + "\n\n" + body,
	)
}

func formatScore(score *float32) string {
	if score == nil {
		return "score=n/a"
	}
	return fmt.Sprintf("score=%.3f", *score)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// SetResults replaces the chunks and resets the selection.
func (r *ResultList) SetResults(results []domain.RetrievalResult) {
	r.results = results
	r.selected = 0
	r.expanded = false
}

// Results returns the chunks.
func (r *ResultList) Results() []domain.RetrievalResult {
	return r.results
}

// Selected returns the selection index.
func (r *ResultList) Selected() int {
	return r.selected
}

// SetSelected moves the selection; out-of-range indexes are ignored.
func (r *ResultList) SetSelected(index int) {
	if index >= 0 && index < len(r.results) {
		r.selected = index
	}
}

// SelectedResult returns the selected chunk, or nil when the list is empty.
func (r *ResultList) SelectedResult() *domain.RetrievalResult {
	if r.selected < 0 || r.selected >= len(r.results) {
		return nil
	}
	return &r.results[r.selected]
}

// ToggleExpanded shows or hides the detail box for the selected chunk.
func (r *ResultList) ToggleExpanded() {
	r.expanded = !r.expanded
}

// Expanded reports whether the detail box is shown.
func (r *ResultList) Expanded() bool {
	return r.expanded
}

// MoveUp selects the previous chunk.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown selects the next chunk.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.results)-1 {
		r.selected++
	}
}

// SetDimensions sets the area the list may draw in.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of chunks.
func (r *ResultList) Count() int {
	return len(r.results)
}
