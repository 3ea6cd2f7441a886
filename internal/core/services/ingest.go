package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/knowgrid/knowgrid/internal/chunker"
	"github.com/knowgrid/knowgrid/internal/core/domain"
	"github.com/knowgrid/knowgrid/internal/core/ports/driven"
	"github.com/knowgrid/knowgrid/internal/core/ports/driving"
	"github.com/knowgrid/knowgrid/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService drives the ingestion path: split into chunks, embed in
// bulk, then replace the source's chunks in the vector index.
//
// Re-ingestion of one source is delete-then-add; the service serializes
// it per source so interleaved deletes and adds cannot leave a document
// partially indexed. Different sources ingest concurrently.
type IngestService struct {
	splitter         *chunker.Splitter
	embeddingService driven.EmbeddingService
	vectorIndex      driven.VectorIndex

	mu          sync.Mutex
	sourceLocks map[string]*sync.Mutex
}

// NewIngestService creates an ingest service.
func NewIngestService(
	splitter *chunker.Splitter,
	embeddingService driven.EmbeddingService,
	vectorIndex driven.VectorIndex,
) *IngestService {
	return &IngestService{
		splitter:         splitter,
		embeddingService: embeddingService,
		vectorIndex:      vectorIndex,
		sourceLocks:      make(map[string]*sync.Mutex),
	}
}

// Ingest splits, embeds and indexes one document.
//
// Validation and embedding failures abort before any index write, so a
// failed ingestion leaves no partial state for the document. Chunk ids
// derive from source and position, making repeat ingestion idempotent.
func (s *IngestService) Ingest(ctx context.Context, doc domain.Document) (driving.IngestResult, error) {
	logger.Section("Ingestion")

	if err := doc.Validate(); err != nil {
		return driving.IngestResult{}, fmt.Errorf("validate document: %w", err)
	}

	source := doc.Meta.Normalize().Source
	logger.Debug("Source: %q, department: %q", source, doc.Meta.Normalize().Department)

	chunks := s.splitter.Split(doc)
	if len(chunks) == 0 {
		return driving.IngestResult{}, fmt.Errorf("document produced no chunks: %w", domain.ErrInvalidDocument)
	}
	logger.Debug("Split into %d chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := s.embeddingService.EmbedDocuments(ctx, texts)
	if err != nil {
		return driving.IngestResult{}, fmt.Errorf("embed document %q: %w", source, err)
	}
	if len(vectors) != len(chunks) {
		return driving.IngestResult{}, fmt.Errorf(
			"embed document %q: got %d vectors for %d chunks: %w",
			source, len(vectors), len(chunks), domain.ErrEmbeddingService)
	}

	// Fail fast on dimension drift before touching the index.
	dims := s.embeddingService.Dimensions()
	for i, vec := range vectors {
		if len(vec) != dims {
			return driving.IngestResult{}, fmt.Errorf(
				"chunk %d: vector has %d dimensions, want %d: %w",
				i, len(vec), dims, domain.ErrDimensionMismatch)
		}
		chunks[i].Embedding = vec
	}

	unlock := s.lockSource(source)
	defer unlock()

	removed, err := s.vectorIndex.DeleteSource(ctx, source)
	if err != nil {
		return driving.IngestResult{}, fmt.Errorf("delete previous chunks of %q: %w", source, err)
	}
	if removed > 0 {
		logger.Debug("Replaced %d existing chunks", removed)
	}

	if err := s.vectorIndex.Add(ctx, chunks); err != nil {
		return driving.IngestResult{}, fmt.Errorf("index chunks of %q: %w", source, err)
	}

	logger.Info("Ingested %q: %d chunks", source, len(chunks))

	return driving.IngestResult{
		DocumentID:    uuid.New().String(),
		ChunksCreated: len(chunks),
	}, nil
}

// Remove deletes every chunk of the given source.
func (s *IngestService) Remove(ctx context.Context, source string) (int, error) {
	unlock := s.lockSource(source)
	defer unlock()

	removed, err := s.vectorIndex.DeleteSource(ctx, source)
	if err != nil {
		return 0, fmt.Errorf("delete chunks of %q: %w", source, err)
	}

	logger.Info("Removed %q: %d chunks", source, removed)
	return removed, nil
}

// lockSource acquires the per-source mutex, creating it on first use.
func (s *IngestService) lockSource(source string) func() {
	s.mu.Lock()
	lock, ok := s.sourceLocks[source]
	if !ok {
		lock = &sync.Mutex{}
		s.sourceLocks[source] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
