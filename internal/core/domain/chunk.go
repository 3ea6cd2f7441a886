package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Metadata describes a chunk's provenance and visibility.
// It is a closed record rather than an open key-value map so that
// access filters can be evaluated against typed fields.
type Metadata struct {
	// Source identifies the originating document.
	Source string `json:"source"`

	// Department owns the document and drives access control.
	Department string `json:"department"`

	// DocType is the document category (policy, handbook, report, ...).
	DocType string `json:"doc_type"`

	// AccessLevel is the document's sensitivity label.
	AccessLevel string `json:"access_level"`

	// ChunkIndex is the 0-based position within the source document.
	ChunkIndex int `json:"chunk_index"`

	// TotalChunks is the number of chunks the source document produced.
	// Assigned only after the full split completes.
	TotalChunks int `json:"total_chunks"`

	// Section is the document section heading, if known.
	Section string `json:"section,omitempty"`

	// PageNumber is the 1-based page, 0 when unknown.
	PageNumber int `json:"page_number,omitempty"`
}

// Chunk is the atomic unit of indexing and retrieval.
// Chunks are immutable once indexed; updating a document replaces
// all of its chunks wholesale.
type Chunk struct {
	// ID is derived deterministically from Source and ChunkIndex,
	// so re-ingesting a document overwrites rather than duplicates.
	ID string

	// Text is the chunk content.
	Text string

	// Embedding is the vector representation for similarity search.
	// All chunks in one index share the same dimension.
	Embedding []float32

	// Meta carries provenance and visibility.
	Meta Metadata
}

// ChunkID derives the deterministic identity of a chunk from its
// source document and position. Identical input always yields the
// same id, which makes re-ingestion idempotent.
func ChunkID(source string, index int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%d", source, index)))
	return hex.EncodeToString(sum[:16])
}

// RetrievedDocument is a scored chunk returned by retrieval.
// It is ephemeral, constructed per query.
type RetrievedDocument struct {
	// ChunkID identifies the underlying chunk.
	ChunkID string `json:"chunk_id"`

	// Content is the chunk text.
	Content string `json:"content"`

	// Meta is the chunk metadata.
	Meta Metadata `json:"metadata"`

	// Score is the relevance score in [0,1].
	Score float64 `json:"score"`
}

// CitationHeader renders the citation line used both in generated
// prompts and in source listings, e.g. "policy.pdf - Benefits (p. 3)".
func (d RetrievedDocument) CitationHeader() string {
	header := d.Meta.Source
	if d.Meta.Section != "" {
		header += " - " + d.Meta.Section
	}
	if d.Meta.PageNumber > 0 {
		header += fmt.Sprintf(" (p. %d)", d.Meta.PageNumber)
	}
	return header
}
