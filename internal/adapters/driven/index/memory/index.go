// Package memory provides an in-memory vector index. It backs tests and
// ephemeral sessions; durable deployments use the sqlite index.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/knowgrid/knowgrid/internal/adapters/driven/index"
	"github.com/knowgrid/knowgrid/internal/core/domain"
	"github.com/knowgrid/knowgrid/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an in-memory implementation of driven.VectorIndex.
type Index struct {
	mu         sync.RWMutex
	chunks     map[string]domain.Chunk
	dimensions int
}

// New creates an empty in-memory index. The embedding dimension is
// fixed by the first Add.
func New() *Index {
	return &Index{chunks: make(map[string]domain.Chunk)}
}

// Add upserts chunks by id.
func (idx *Index) Add(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	dims := idx.dimensions
	if dims == 0 {
		dims = len(chunks[0].Embedding)
	}
	for _, chunk := range chunks {
		if len(chunk.Embedding) != dims {
			return fmt.Errorf("add chunk %s: got %d dimensions, index has %d: %w",
				chunk.ID, len(chunk.Embedding), dims, domain.ErrDimensionMismatch)
		}
	}

	idx.dimensions = dims
	for _, chunk := range chunks {
		idx.chunks[chunk.ID] = chunk
	}
	return nil
}

// DeleteSource removes every chunk ingested from the given source.
func (idx *Index) DeleteSource(_ context.Context, source string) (int, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	removed := 0
	for id, chunk := range idx.chunks {
		if chunk.Meta.Source == source {
			delete(idx.chunks, id)
			removed++
		}
	}
	return removed, nil
}

// Search returns up to k filter-visible chunks ranked by cosine
// similarity to the query vector.
func (idx *Index) Search(_ context.Context, query []float32, k int, filter domain.AccessFilter) ([]driven.VectorHit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	candidates := make([]domain.Chunk, 0, len(idx.chunks))
	for _, chunk := range idx.chunks {
		candidates = append(candidates, chunk)
	}
	return index.TopK(candidates, query, k, filter), nil
}

// Stats reports chunk, source, and per-department counts.
func (idx *Index) Stats(_ context.Context) (driven.IndexStats, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	sources := make(map[string]struct{})
	departments := make(map[string]int)
	for _, chunk := range idx.chunks {
		sources[chunk.Meta.Source] = struct{}{}
		departments[chunk.Meta.Department]++
	}

	return driven.IndexStats{
		DocumentCount: len(sources),
		ChunkCount:    len(idx.chunks),
		Departments:   departments,
	}, nil
}

// Close is a no-op for the in-memory index.
func (idx *Index) Close() error {
	return nil
}
