package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
)

func TestNewBar_Defaults(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.ResultCount())
	assert.Equal(t, 80, bar.Width())
	assert.Nil(t, bar.Init())

	updated, cmd := bar.Update(nil)
	assert.Same(t, bar, updated)
	assert.Nil(t, cmd)
}

func TestBar_Setters(t *testing.T) {
	bar := NewBar(nil, nil)

	bar.SetState(StateResults)
	bar.SetMessage("Answered in 12ms")
	bar.SetResultCount(3)
	bar.SetWidth(120)

	assert.Equal(t, StateResults, bar.State())
	assert.Equal(t, "Answered in 12ms", bar.Message())
	assert.Equal(t, 3, bar.ResultCount())
	assert.Equal(t, 120, bar.Width())
}

func TestBar_ClearKeepsHints(t *testing.T) {
	km := keymap.DefaultKeyMap()
	bar := NewBar(nil, km)
	bar.SetHints(km.DashboardHelp())
	bar.SetState(StateError)
	bar.SetMessage("boom")
	bar.SetResultCount(10)

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.ResultCount())
	assert.Contains(t, bar.View(), "rebuild")
}

func TestBar_View(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		message string
		count   int
		want    string
	}{
		{"ready", StateReady, "", 0, "Ready"},
		{"searching", StateSearching, "", 0, "Retrieving chunks"},
		{"thinking", StateThinking, "ignored", 0, "Thinking"},
		{"indexing", StateIndexing, "", 0, "Indexing documents"},
		{"bare error", StateError, "", 0, "Error"},
		{"error message", StateError, "connection refused", 0, "Error: connection refused"},
		{"message", StateReady, "Answered in 40ms", 0, "Answered in 40ms"},
		{"chunk count", StateResults, "", 5, "5 chunks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(140)
			bar.SetState(tt.state)
			bar.SetMessage(tt.message)
			bar.SetResultCount(tt.count)

			assert.Contains(t, bar.View(), tt.want)
		})
	}
}

func TestBar_Hints(t *testing.T) {
	km := keymap.DefaultKeyMap()

	t.Run("short help by default", func(t *testing.T) {
		bar := NewBar(nil, km)
		bar.SetWidth(140)
		assert.Contains(t, bar.View(), "quit")
	})

	t.Run("results help with chunks", func(t *testing.T) {
		bar := NewBar(nil, km)
		bar.SetWidth(140)
		bar.SetState(StateResults)
		bar.SetResultCount(2)
		assert.Contains(t, bar.View(), "expand")
	})

	t.Run("explicit hints win", func(t *testing.T) {
		bar := NewBar(nil, km)
		bar.SetWidth(140)
		bar.SetHints(km.ChatHelp())
		bar.SetState(StateResults)
		bar.SetResultCount(2)

		view := bar.View()
		assert.Contains(t, view, "search")
		assert.NotContains(t, view, "expand")
	})
}
