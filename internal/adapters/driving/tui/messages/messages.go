// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// RetrievalCompleted carries retrieved chunks back to the model.
type RetrievalCompleted struct {
	Query   string
	Results []domain.RetrievalResult
	Err     error
}

// AnswerCompleted carries a generated answer back to the chat view.
type AnswerCompleted struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// StatsLoaded carries dashboard figures.
type StatsLoaded struct {
	Stats *domain.SystemStats
	Err   error
}

// BuildCompleted signals a rebuild triggered from the dashboard finished.
type BuildCompleted struct {
	Report *domain.BuildReport
	Err    error
}

// VerifyCompleted carries a consistency report.
type VerifyCompleted struct {
	Report *domain.ConsistencyReport
	Err    error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewChat is the question and answer view.
	ViewChat
	// ViewSearch is the retrieval input and results view.
	ViewSearch
	// ViewDashboard shows index statistics.
	ViewDashboard
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewSearch:
		return "search"
	case ViewDashboard:
		return "dashboard"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
