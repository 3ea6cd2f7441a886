package driving

import (
	"context"

	"github.com/knowgrid/knowgrid/internal/core/domain"
)

// IngestResult reports the outcome of a document ingestion.
type IngestResult struct {
	// DocumentID is the id assigned to this ingestion run.
	DocumentID string

	// ChunksCreated is the number of chunks indexed.
	ChunksCreated int
}

// IngestService drives the ingestion path:
// chunking -> embedding -> vector index.
type IngestService interface {
	// Ingest splits, embeds and indexes one document. Re-ingesting the
	// same source replaces its chunks wholesale; concurrent re-ingestion
	// of one source is serialized internally.
	Ingest(ctx context.Context, doc domain.Document) (IngestResult, error)

	// Remove deletes every chunk of the given source.
	// Returns the number of chunks removed.
	Remove(ctx context.Context, source string) (int, error)
}
