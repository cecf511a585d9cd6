package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Query string `json:"query"`
	TopK  *int   `json:"top_k,omitempty"`
}

// ChatMetrics extends answer metrics with the end-to-end handler time.
type ChatMetrics struct {
	domain.AnswerMetrics
	ControllerTotalMS float64 `json:"controller_total_ms"`
}

// ChatResponse is the body returned by POST /chat.
type ChatResponse struct {
	Answer    string            `json:"answer"`
	Citations []domain.Citation `json:"citations"`
	Metrics   ChatMetrics       `json:"metrics"`
}

// IngestResponse is the body returned by POST /ingest.
type IngestResponse struct {
	*domain.BuildReport
	TotalIngestionTimeMS float64 `json:"total_ingestion_time_ms"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Report *domain.BuildReport `json:"report,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Write([]byte("OK")) //nolint:errcheck
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err), nil)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, fmt.Errorf("%w: query is required", domain.ErrInvalidInput), nil)
		return
	}

	topK := s.topK
	if req.TopK != nil {
		topK = *req.TopK
	}

	if s.ports.Answer == nil {
		writeError(w, domain.ErrLLMUnavailable, nil)
		return
	}

	answer, err := s.ports.Answer.Ask(r.Context(), req.Query, topK)
	if err != nil {
		writeError(w, err, nil)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Answer:    answer.Answer,
		Citations: answer.Citations,
		Metrics: ChatMetrics{
			AnswerMetrics:     answer.Metrics,
			ControllerTotalMS: roundMS(time.Since(start)),
		},
	})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	report, err := s.ports.Indexing.TryBuild(r.Context())
	if err != nil {
		writeError(w, err, report)
		return
	}

	writeJSON(w, http.StatusOK, IngestResponse{
		BuildReport:          report,
		TotalIngestionTimeMS: roundMS(time.Since(start)),
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.ports.Stats == nil {
		writeError(w, errors.New("stats are not available"), nil)
		return
	}

	stats, err := s.ports.Stats.Stats(r.Context())
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func decodeJSON(r *http.Request, v any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

// statusFor maps core errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrBuildInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrIndexNotLoaded),
		errors.Is(err, domain.ErrEmbeddingUnavailable),
		errors.Is(err, domain.ErrLLMUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrDimensionMismatch),
		errors.Is(err, domain.ErrInvalidConfig):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error, report *domain.BuildReport) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Warn("request failed: %v", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Report: report})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encoding response: %v", err)
	}
}

func roundMS(d time.Duration) float64 {
	return float64(d.Microseconds()/10) / 100
}
