// Package chunker splits document text into overlapping chunks while
// preserving semantic boundaries where the size budget allows.
package chunker

import (
	"strings"

	"github.com/knowgrid/knowgrid/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// defaultSeparators is the boundary priority list: paragraph breaks,
// line breaks, sentence-ending punctuation, whitespace, and finally
// hard character positions.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter splits document text recursively: it tries the coarsest
// boundary first and falls back to finer ones only for pieces that
// would otherwise exceed the chunk size.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// WithSeparators overrides the boundary priority list.
func WithSeparators(separators []string) Option {
	return func(s *Splitter) {
		if len(separators) > 0 {
			s.separators = separators
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: defaultSeparators,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// ChunkSize returns the configured target chunk size.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split produces the ordered chunk sequence for one document.
// Every chunk inherits the document's base metadata plus its index;
// TotalChunks is attached only after the full split has materialized.
// Empty or whitespace-only text yields an empty sequence, no error.
func (s *Splitter) Split(doc domain.Document) []domain.Chunk {
	if strings.TrimSpace(doc.Text) == "" {
		return nil
	}

	pieces := s.splitText(doc.Text, s.separators)

	meta := doc.Meta.Normalize()
	chunks := make([]domain.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = domain.Chunk{
			ID:   domain.ChunkID(meta.Source, i),
			Text: piece,
			Meta: doc.ChunkMeta(i, len(pieces)),
		}
	}

	return chunks
}

// splitText splits text on the coarsest separator present, recursing
// with the remaining separators for pieces that still exceed the
// chunk size, then merges adjacent small pieces back up to size.
func (s *Splitter) splitText(text string, separators []string) []string {
	sep := separators[len(separators)-1]
	var rest []string
	for i, candidate := range separators {
		if candidate == "" || strings.Contains(text, candidate) {
			sep = candidate
			rest = separators[i+1:]
			break
		}
	}

	if sep == "" {
		return s.hardSplit(text)
	}

	// SplitAfter keeps the separator attached to the preceding piece so
	// concatenating chunks (minus overlap) reconstructs the source.
	splits := splitAfterNonEmpty(text, sep)

	var final []string
	var small []string

	for _, piece := range splits {
		if len(piece) < s.chunkSize {
			small = append(small, piece)
			continue
		}

		if len(small) > 0 {
			final = append(final, s.merge(small)...)
			small = nil
		}

		if len(rest) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.splitText(piece, rest)...)
		}
	}

	if len(small) > 0 {
		final = append(final, s.merge(small)...)
	}

	return final
}

// merge greedily joins adjacent pieces into chunks up to chunkSize,
// retaining a trailing window of pieces as the head of the next chunk
// to provide the configured overlap.
func (s *Splitter) merge(pieces []string) []string {
	var out []string
	var current []string
	total := 0

	for _, piece := range pieces {
		if total+len(piece) > s.chunkSize && total > 0 {
			out = append(out, strings.Join(current, ""))

			// Drop leading pieces until only the overlap window remains.
			for len(current) > 0 &&
				(total > s.overlap || (total+len(piece) > s.chunkSize && total > 0)) {
				total -= len(current[0])
				current = current[1:]
			}
		}

		current = append(current, piece)
		total += len(piece)
	}

	if len(current) > 0 {
		out = append(out, strings.Join(current, ""))
	}

	return out
}

// hardSplit slices text at fixed positions with overlapping windows.
// Last resort when no boundary separator is present. Positions are
// rune offsets so multibyte text is never cut mid-rune.
func (s *Splitter) hardSplit(text string) []string {
	runes := []rune(text)
	if len(runes) <= s.chunkSize {
		return []string{text}
	}

	stride := s.chunkSize - s.overlap
	var out []string
	for start := 0; start < len(runes); start += stride {
		end := start + s.chunkSize
		if end >= len(runes) {
			out = append(out, string(runes[start:]))
			break
		}
		out = append(out, string(runes[start:end]))
	}

	return out
}

// splitAfterNonEmpty splits text keeping the separator at the end of
// each piece, dropping any empty trailing piece.
func splitAfterNonEmpty(text, sep string) []string {
	parts := strings.SplitAfter(text, sep)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
