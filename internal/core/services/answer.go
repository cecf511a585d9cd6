package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// DefaultAnswerTemperature is used when no temperature is configured.
const DefaultAnswerTemperature = 0.2

const noSection = "N/A"

// AnswerService answers questions from retrieved chunks with an LLM.
type AnswerService struct {
	retrieval   driving.RetrievalService
	llm         driven.LLMService
	prompts     driven.PromptStore
	temperature float64
}

// AnswerOption configures an AnswerService.
type AnswerOption func(*AnswerService)

// WithPromptStore loads the system and answer templates from store.
func WithPromptStore(store driven.PromptStore) AnswerOption {
	return func(s *AnswerService) {
		s.prompts = store
	}
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) AnswerOption {
	return func(s *AnswerService) {
		s.temperature = t
	}
}

// NewAnswerService creates an answer service. llm may be nil, in which
// case Ask fails with domain.ErrLLMUnavailable.
func NewAnswerService(retrieval driving.RetrievalService, llm driven.LLMService, opts ...AnswerOption) *AnswerService {
	s := &AnswerService{
		retrieval:   retrieval,
		llm:         llm,
		temperature: DefaultAnswerTemperature,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ask retrieves topK chunks and generates an answer grounded in them.
func (s *AnswerService) Ask(ctx context.Context, query string, topK int) (*domain.Answer, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	start := time.Now()
	results, err := s.retrieval.Retrieve(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	retrievalMS := logger.Millis(time.Since(start))

	logger.Section("Answer Generation")

	t0 := time.Now()
	system := s.loadPrompt(driven.PromptSystem, domain.DefaultSystemPrompt)
	prompt := BuildPrompt(s.loadPrompt(driven.PromptAnswer, domain.DefaultAnswerPrompt), query, results)
	promptBuilt := time.Now()
	logger.Debug("Prompt: %d chars from %d chunks", len(prompt), len(results))

	messages := []driven.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: prompt},
	}
	reply, err := s.llm.Chat(ctx, messages, driven.ChatOptions{Temperature: s.temperature})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	done := time.Now()
	answer := strings.TrimSpace(reply)

	metrics := domain.AnswerMetrics{
		PromptBuildMS:  logger.Millis(promptBuilt.Sub(t0)),
		RetrievalMS:    retrievalMS,
		LLMCallMS:      logger.Millis(done.Sub(promptBuilt)),
		TotalLatencyMS: logger.Millis(done.Sub(t0)),
		ChunksUsed:     len(results),
		PromptChars:    len(prompt),
		AnswerChars:    len(answer),
	}
	logger.Debug("LLM %s answered in %.1fms", s.llm.ModelName(), metrics.LLMCallMS)

	return &domain.Answer{
		Answer:    answer,
		Citations: Citations(results),
		Metrics:   metrics,
	}, nil
}

// loadPrompt falls back to def when no store is configured or loading fails.
func (s *AnswerService) loadPrompt(name, def string) string {
	if s.prompts == nil {
		return def
	}
	p, err := s.prompts.Load(name)
	if err != nil || p == "" {
		if err != nil {
			logger.Warn("load prompt %q: %v", name, err)
		}
		return def
	}
	return p
}

// BuildPrompt renders one [Source i] block per result into template.
// The template refers to the question as %[1]s and the sources as %[2]s.
func BuildPrompt(template, query string, results []domain.RetrievalResult) string {
	blocks := make([]string, len(results))
	for i, r := range results {
		section := noSection
		if r.PageOrSection != nil && *r.PageOrSection != "" {
			section = *r.PageOrSection
		}
		name := r.DocumentName
		if name == "" {
			name = "unknown"
		}
		blocks[i] = fmt.Sprintf("[Source %d]\n%s | %s | vector_id=%d\n%s",
			i+1, name, section, r.VectorID, strings.TrimSpace(r.ChunkText))
	}

	// A replacer tolerates stray % signs in user-edited templates.
	return strings.NewReplacer(
		"%[1]s", query,
		"%[2]s", strings.Join(blocks, "\n\n"),
	).Replace(template)
}

// Citations mirrors each result used in the prompt.
func Citations(results []domain.RetrievalResult) []domain.Citation {
	citations := make([]domain.Citation, len(results))
	for i, r := range results {
		citations[i] = domain.Citation{
			DocumentName:  r.DocumentName,
			PageOrSection: r.PageOrSection,
			VectorID:      r.VectorID,
			Score:         r.Score,
		}
	}
	return citations
}
