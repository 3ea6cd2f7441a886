package driven

import (
	"context"

	"github.com/knowgrid/knowgrid/internal/core/domain"
)

// VectorIndex stores chunks with their embeddings and supports
// nearest-neighbour search with a pushed-down metadata filter.
//
// The filter is applied BEFORE top-k selection so filtered-out chunks
// never count against k; otherwise role-restricted queries would
// under-return.
type VectorIndex interface {
	// Add upserts chunks by id. Writes are durable before Add returns.
	// Adding a chunk whose embedding dimension does not match the index
	// fails with domain.ErrDimensionMismatch before any write.
	Add(ctx context.Context, chunks []domain.Chunk) error

	// DeleteSource removes every chunk whose metadata source matches.
	// Returns the number of chunks removed. Used before re-ingesting an
	// updated document.
	DeleteSource(ctx context.Context, source string) (int, error)

	// Search returns up to k chunks visible under the filter, ranked by
	// descending cosine similarity to the query vector.
	Search(ctx context.Context, query []float32, k int, filter domain.AccessFilter) ([]VectorHit, error)

	// Stats reports index-wide counters.
	Stats(ctx context.Context) (IndexStats, error)

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Chunk is the matched chunk including its stored embedding,
	// so re-rankers (MMR) can compare candidates pairwise.
	Chunk domain.Chunk

	// Similarity is the cosine similarity score clamped to [0,1].
	Similarity float64
}

// IndexStats summarises index contents.
type IndexStats struct {
	// DocumentCount is the number of distinct sources.
	DocumentCount int `json:"document_count"`

	// ChunkCount is the total number of chunks.
	ChunkCount int `json:"chunk_count"`

	// Departments maps department name to its chunk count.
	Departments map[string]int `json:"departments"`
}
