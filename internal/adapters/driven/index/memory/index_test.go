package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowgrid/knowgrid/internal/core/domain"
)

func chunk(id, source, department string, embedding []float32) domain.Chunk {
	return domain.Chunk{
		ID:        id,
		Text:      "text for " + id,
		Embedding: embedding,
		Meta: domain.Metadata{
			Source:     source,
			Department: department,
		},
	}
}

func TestIndex_AddAndSearch(t *testing.T) {
	idx := New()
	ctx := context.Background()

	err := idx.Add(ctx, []domain.Chunk{
		chunk("a", "doc.md", "Engineering", []float32{1, 0, 0}),
		chunk("b", "doc.md", "Engineering", []float32{0, 1, 0}),
		chunk("c", "doc.md", "Engineering", []float32{0.9, 0.1, 0}),
	})
	require.NoError(t, err)

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 2, domain.AccessFilter{AllowAll: true})
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "a", hits[0].Chunk.ID)
	assert.Equal(t, "c", hits[1].Chunk.ID)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)
}

func TestIndex_Add_Upsert(t *testing.T) {
	idx := New()
	ctx := context.Background()

	first := chunk("a", "doc.md", "HR", []float32{1, 0, 0})
	require.NoError(t, idx.Add(ctx, []domain.Chunk{first}))

	updated := first
	updated.Text = "updated text"
	require.NoError(t, idx.Add(ctx, []domain.Chunk{updated}))

	stats, err := idx.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ChunkCount)

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 1, domain.AccessFilter{AllowAll: true})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "updated text", hits[0].Chunk.Text)
}

func TestIndex_Add_DimensionMismatch(t *testing.T) {
	idx := New()
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, []domain.Chunk{
		chunk("a", "doc.md", "HR", []float32{1, 0, 0}),
	}))

	err := idx.Add(ctx, []domain.Chunk{
		chunk("b", "doc.md", "HR", []float32{1, 0}),
	})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	// Nothing from the failed batch may land in the index.
	stats, err := idx.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ChunkCount)
}

func TestIndex_Add_MixedBatchRejectedAtomically(t *testing.T) {
	idx := New()
	ctx := context.Background()

	err := idx.Add(ctx, []domain.Chunk{
		chunk("a", "doc.md", "HR", []float32{1, 0, 0}),
		chunk("b", "doc.md", "HR", []float32{1, 0}),
	})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	stats, err := idx.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.ChunkCount)
}

func TestIndex_Search_FilterPushdown(t *testing.T) {
	idx := New()
	ctx := context.Background()

	// Chunks from a restricted department are more similar than the
	// visible ones; they must not crowd out the visible ones.
	require.NoError(t, idx.Add(ctx, []domain.Chunk{
		chunk("hr-1", "hr.md", "HR", []float32{1, 0, 0}),
		chunk("hr-2", "hr.md", "HR", []float32{0.99, 0.01, 0}),
		chunk("eng-1", "eng.md", "Engineering", []float32{0.5, 0.5, 0}),
		chunk("eng-2", "eng.md", "Engineering", []float32{0.4, 0.6, 0}),
	}))

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 2, domain.AccessFilter{
		Departments: []string{"Engineering"},
	})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "eng-1", hits[0].Chunk.ID)
	assert.Equal(t, "eng-2", hits[1].Chunk.ID)
}

func TestIndex_Search_UnsatisfiableFilter(t *testing.T) {
	idx := New()
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, []domain.Chunk{
		chunk("a", "doc.md", "HR", []float32{1, 0, 0}),
	}))

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 5, domain.AccessFilter{})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_Search_Empty(t *testing.T) {
	idx := New()

	hits, err := idx.Search(context.Background(), []float32{1, 0, 0}, 5, domain.AccessFilter{AllowAll: true})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_DeleteSource(t *testing.T) {
	idx := New()
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, []domain.Chunk{
		chunk("a", "old.md", "HR", []float32{1, 0, 0}),
		chunk("b", "old.md", "HR", []float32{0, 1, 0}),
		chunk("c", "keep.md", "HR", []float32{0, 0, 1}),
	}))

	removed, err := idx.DeleteSource(ctx, "old.md")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	stats, err := idx.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ChunkCount)
	assert.Equal(t, 1, stats.DocumentCount)
}

func TestIndex_DeleteSource_NotFound(t *testing.T) {
	idx := New()

	removed, err := idx.DeleteSource(context.Background(), "missing.md")
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestIndex_Stats(t *testing.T) {
	idx := New()
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, []domain.Chunk{
		chunk("a", "hr.md", "HR", []float32{1, 0, 0}),
		chunk("b", "hr.md", "HR", []float32{0, 1, 0}),
		chunk("c", "eng.md", "Engineering", []float32{0, 0, 1}),
	}))

	stats, err := idx.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.DocumentCount)
	assert.Equal(t, 3, stats.ChunkCount)
	assert.Equal(t, 2, stats.Departments["HR"])
	assert.Equal(t, 1, stats.Departments["Engineering"])
}

func TestIndex_Concurrency(t *testing.T) {
	idx := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	numGoroutines := 50

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			c := chunk(fmt.Sprintf("chunk-%d", id), fmt.Sprintf("doc-%d.md", id%5), "General", []float32{1, 0, 0})
			_ = idx.Add(ctx, []domain.Chunk{c})
			_, _ = idx.Search(ctx, []float32{1, 0, 0}, 3, domain.AccessFilter{AllowAll: true})
			_, _ = idx.Stats(ctx)
		}(i)
	}
	wg.Wait()

	stats, err := idx.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, numGoroutines, stats.ChunkCount)
}
