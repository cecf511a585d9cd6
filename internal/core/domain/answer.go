package domain

// Answer is a generated response grounded in retrieved chunks.
type Answer struct {
	Answer    string        `json:"answer"`
	Citations []Citation    `json:"citations"`
	Metrics   AnswerMetrics `json:"metrics"`
}

// Citation points at one chunk used to build the prompt.
type Citation struct {
	DocumentName  string   `json:"document_name"`
	PageOrSection *string  `json:"page_or_section"`
	VectorID      int64    `json:"vector_id"`
	Score         *float32 `json:"score"`
}

// AnswerMetrics records timings and sizes of one generation.
type AnswerMetrics struct {
	PromptBuildMS  float64 `json:"prompt_build_ms"`
	RetrievalMS    float64 `json:"retrieval_ms"`
	LLMCallMS      float64 `json:"llm_call_ms"`
	TotalLatencyMS float64 `json:"total_latency_ms"`
	ChunksUsed     int     `json:"n_chunks_used"`
	PromptChars    int     `json:"prompt_chars"`
	AnswerChars    int     `json:"answer_chars"`
}
