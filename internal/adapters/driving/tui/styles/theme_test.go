package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme_StatusColoursDistinct(t *testing.T) {
	theme := DefaultTheme()
	require.NotNil(t, theme)

	seen := make(map[lipgloss.Color]bool)
	for _, c := range []lipgloss.Color{theme.Accent, theme.Highlight, theme.Good, theme.Caution, theme.Bad} {
		assert.NotEmpty(t, string(c))
		assert.False(t, seen[c], "duplicate colour %s", c)
		seen[c] = true
	}
}

func TestNewStyles_NilThemeFallsBack(t *testing.T) {
	s := NewStyles(nil)

	require.NotNil(t, s)
	assert.Equal(t, DefaultTheme(), s.Theme())
}

func TestNewStyles_KeepsTheme(t *testing.T) {
	theme := DefaultTheme()
	theme.Accent = lipgloss.Color("#000000")

	s := NewStyles(theme)
	assert.Same(t, theme, s.Theme())
}

func TestStyles_Initialised(t *testing.T) {
	s := DefaultStyles()

	for name, style := range map[string]lipgloss.Style{
		"Title":      s.Title,
		"Subtitle":   s.Subtitle,
		"Selected":   s.Selected,
		"InputField": s.InputField,
		"StatusBar":  s.StatusBar,
		"Question":   s.Question,
		"Answer":     s.Answer,
		"Citation":   s.Citation,
		"Metrics":    s.Metrics,
	} {
		assert.NotEqual(t, lipgloss.Style{}, style, name)
		assert.Contains(t, style.Render("vector_id=3"), "vector_id=3", name)
	}
}

func TestStyles_Score(t *testing.T) {
	s := DefaultStyles()

	tests := []struct {
		score float32
		want  lipgloss.Style
	}{
		{0.92, s.Success},
		{StrongMatch, s.Success},
		{0.6, s.Warning},
		{WeakMatch, s.Warning},
		{0.1, s.Muted},
		{-0.4, s.Muted},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Score(tt.score), "score %.2f", tt.score)
	}
}
