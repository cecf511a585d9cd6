package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func newTestPorts() *Ports {
	return NewPorts(
		&MockRetrievalService{},
		&MockAnswerService{},
		&MockStatsService{},
		&MockIndexingService{},
	)
}

func newReadyApp(t *testing.T, ports *Ports) *App {
	t.Helper()
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

func typeInto(app *App, text string) {
	for _, r := range text {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(newTestPorts())

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.False(t, app.Ready())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(NewPorts(nil, nil, &MockStatsService{}, nil))

	assert.ErrorIs(t, err, ErrMissingRetrievalService)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	assert.Same(t, app, app.WithContext(ctx))
	assert.Equal(t, ctx, app.ctx)
}

func TestApp_Init(t *testing.T) {
	app, _ := NewApp(newTestPorts())
	assert.NotNil(t, app.Init())
}

func TestApp_WindowSize(t *testing.T) {
	app, _ := NewApp(newTestPorts())
	assert.Equal(t, "Initialising...", app.View())

	_, cmd := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
	assert.Equal(t, 120, app.width)
	assert.Contains(t, app.View(), "sercha-rag")
}

func TestApp_CtrlCQuits(t *testing.T) {
	app := newReadyApp(t, newTestPorts())

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_MenuNavigatesToViews(t *testing.T) {
	tests := []struct {
		key  rune
		want messages.ViewType
	}{
		{'1', messages.ViewChat},
		{'2', messages.ViewSearch},
		{'3', messages.ViewDashboard},
		{'4', messages.ViewHelp},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			app := newReadyApp(t, newTestPorts())

			_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{tt.key}})
			require.NotNil(t, cmd)
			app.Update(cmd())

			assert.Equal(t, tt.want, app.CurrentView())
		})
	}
}

func TestApp_ChatRoundTrip(t *testing.T) {
	ports := newTestPorts()
	ports.Answer = &MockAnswerService{
		AskFunc: func(_ context.Context, query string, topK int) (*domain.Answer, error) {
			return &domain.Answer{Answer: "echo: " + query}, nil
		},
	}
	app := newReadyApp(t, ports)
	app.Update(messages.ViewChanged{View: messages.ViewChat})

	typeInto(app, "hello")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	app.Update(cmd())

	require.Len(t, app.Exchanges(), 1)
	assert.Equal(t, "echo: hello", app.Exchanges()[0].Answer.Answer)
	assert.Contains(t, app.View(), "echo: hello")
}

func TestApp_RetrieveRoundTrip(t *testing.T) {
	var gotTopK int
	ports := newTestPorts()
	ports.Retrieval = &MockRetrievalService{
		RetrieveFunc: func(_ context.Context, _ string, topK int) ([]domain.RetrievalResult, error) {
			gotTopK = topK
			return []domain.RetrievalResult{
				{MetadataRow: domain.MetadataRow{ChunkID: "doc_chunk_0", DocumentName: "doc", ChunkText: "text"}},
			}, nil
		},
	}
	app := newReadyApp(t, ports).WithTopK(7)
	app.Update(messages.ViewChanged{View: messages.ViewSearch})

	typeInto(app, "query")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Equal(t, 7, gotTopK)
	assert.Len(t, app.Results(), 1)
	assert.NoError(t, app.Err())
}

func TestApp_RetrieveErrorSurfaces(t *testing.T) {
	ports := newTestPorts()
	ports.Retrieval = &MockRetrievalService{
		RetrieveFunc: func(context.Context, string, int) ([]domain.RetrievalResult, error) {
			return nil, domain.ErrIndexNotLoaded
		},
	}
	app := newReadyApp(t, ports)
	app.Update(messages.ViewChanged{View: messages.ViewSearch})

	typeInto(app, "query")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app.Update(cmd())

	assert.ErrorIs(t, app.Err(), domain.ErrIndexNotLoaded)
}

func TestApp_DashboardLoadsStats(t *testing.T) {
	ports := newTestPorts()
	ports.Stats = &MockStatsService{
		StatsFunc: func(context.Context) (*domain.SystemStats, error) {
			return &domain.SystemStats{Documents: 3, Chunks: 12}, nil
		},
	}
	app := newReadyApp(t, ports)

	_, cmd := app.Update(messages.ViewChanged{View: messages.ViewDashboard})
	require.NotNil(t, cmd)
	app.Update(cmd())

	require.NotNil(t, app.Stats())
	assert.Equal(t, 12, app.Stats().Chunks)
	assert.Contains(t, app.View(), "Dashboard")
}

func TestApp_DashboardVerify(t *testing.T) {
	ports := newTestPorts()
	ports.Indexing = &MockIndexingService{
		VerifyFunc: func(context.Context) (*domain.ConsistencyReport, error) {
			return &domain.ConsistencyReport{IndexCount: 2, MetadataCount: 2}, nil
		},
	}
	app := newReadyApp(t, ports)
	app.Update(messages.ViewChanged{View: messages.ViewDashboard})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'v'}})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Contains(t, app.View(), "consistent: 2 vectors")
}

func TestApp_HelpEscReturnsToMenu(t *testing.T) {
	app := newReadyApp(t, newTestPorts())
	app.Update(messages.ViewChanged{View: messages.ViewHelp})
	assert.Contains(t, app.View(), "Help")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_EscFromViewReturnsToMenu(t *testing.T) {
	for _, view := range []messages.ViewType{messages.ViewChat, messages.ViewSearch, messages.ViewDashboard} {
		t.Run(view.String(), func(t *testing.T) {
			app := newReadyApp(t, newTestPorts())
			app.Update(messages.ViewChanged{View: view})

			_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEsc})
			require.NotNil(t, cmd)
			app.Update(cmd())

			assert.Equal(t, messages.ViewMenu, app.CurrentView())
		})
	}
}

func TestApp_ErrorOccurred(t *testing.T) {
	app := newReadyApp(t, newTestPorts())
	app.Update(messages.ViewChanged{View: messages.ViewChat})

	app.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, app.Err(), "boom")
}

func TestApp_QuitMessage(t *testing.T) {
	app := newReadyApp(t, newTestPorts())

	_, cmd := app.Update(messages.Quit{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_LateAnswerStillRouted(t *testing.T) {
	app := newReadyApp(t, newTestPorts())
	app.Update(messages.ViewChanged{View: messages.ViewChat})
	typeInto(app, "q")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	// User leaves before the answer arrives.
	app.Update(messages.ViewChanged{View: messages.ViewMenu})
	app.Update(cmd())

	require.Len(t, app.Exchanges(), 1)
	assert.NotNil(t, app.Exchanges()[0].Answer)
}
