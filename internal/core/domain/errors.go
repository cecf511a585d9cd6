package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// Returned when the index file is absent on load.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates a configuration value is unusable,
	// e.g. an overlap that is not smaller than the chunk size.
	// Configuration errors are never retried.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedType indicates an unknown provider, store or file type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Vector index errors.

	// ErrDimensionMismatch indicates a vector disagrees with the index's
	// established dimensionality. Usually an embedding model mismatch.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrIndexNotLoaded indicates a search before any index was created or loaded.
	ErrIndexNotLoaded = errors.New("vector index not loaded")

	// ErrCorruptIndex indicates the persisted index failed validation.
	ErrCorruptIndex = errors.New("corrupt vector index")

	// Build errors.

	// ErrPartialBuild indicates the build stopped after the index and metadata
	// diverged. The accompanying BuildReport carries the counts.
	ErrPartialBuild = errors.New("partial build")

	// ErrBuildInProgress indicates another build holds the build lock.
	ErrBuildInProgress = errors.New("build in progress")

	// Provider errors.

	// ErrEmbeddingUnavailable indicates the embedding service is not configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured or unreachable.
	// Answer generation is disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
