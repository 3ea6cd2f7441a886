package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidDocument indicates empty or undecodable document input.
	// The caller must fix the input; the operation is not retried.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrDimensionMismatch indicates the embedding dimension does not
	// match the vector index configuration. This is a configuration
	// error and is fatal for the operation.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbeddingService indicates the embedding service failed after
	// its bounded retries were exhausted.
	ErrEmbeddingService = errors.New("embedding service failure")

	// ErrGeneration indicates the generative model call failed.
	// The caller decides whether to retry or surface a degraded response.
	ErrGeneration = errors.New("generation failure")

	// ErrInvalidRole indicates an unrecognised role. Roles are a closed
	// enumeration with no silent fallback.
	ErrInvalidRole = errors.New("invalid role")

	// ErrRetrieval wraps an underlying index or embedding failure after
	// retries are exhausted. The query fails; no partial result is returned.
	ErrRetrieval = errors.New("retrieval failure")

	// ErrInvalidStrategy indicates an unrecognised retrieval strategy.
	ErrInvalidStrategy = errors.New("invalid retrieval strategy")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmbeddingUnavailable indicates the embedding provider could not
	// be created or reached during startup.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the LLM provider could not be created
	// or reached during startup.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)

// ErrorKind maps an error chain to a stable machine-readable kind.
// Unrecognised errors map to "internal". Messages shown to users never
// include stack traces or secrets; the kind is safe to serialize.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidDocument):
		return "invalid_document"
	case errors.Is(err, ErrDimensionMismatch):
		return "dimension_mismatch"
	case errors.Is(err, ErrEmbeddingService):
		return "embedding_service_error"
	case errors.Is(err, ErrGeneration):
		return "generation_error"
	case errors.Is(err, ErrInvalidRole):
		return "invalid_role"
	case errors.Is(err, ErrInvalidStrategy):
		return "invalid_strategy"
	case errors.Is(err, ErrRetrieval):
		return "retrieval_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrEmbeddingUnavailable):
		return "embedding_unavailable"
	case errors.Is(err, ErrLLMUnavailable):
		return "llm_unavailable"
	default:
		return "internal"
	}
}
