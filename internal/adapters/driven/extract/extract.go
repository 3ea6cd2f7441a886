// Package extract converts file bytes into plain text for ingestion.
// Format-specific handling lives behind driven.TextExtractor; the core
// only ever sees extracted text.
package extract

import (
	"fmt"
	"strings"

	"github.com/knowgrid/knowgrid/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.TextExtractor = (*Registry)(nil)

// Registry dispatches to the first registered extractor that supports
// the requested format.
type Registry struct {
	extractors []driven.TextExtractor
}

// NewRegistry creates a registry with the default extractors: markdown
// first (more specific), plain text as the fallback.
func NewRegistry() *Registry {
	return &Registry{
		extractors: []driven.TextExtractor{
			NewMarkdown(),
			NewPlaintext(),
		},
	}
}

// Supports reports whether any registered extractor handles the format.
func (r *Registry) Supports(format string) bool {
	format = normalizeFormat(format)
	for _, e := range r.extractors {
		if e.Supports(format) {
			return true
		}
	}
	return false
}

// Extract dispatches to the first extractor supporting the format.
func (r *Registry) Extract(data []byte, format string) (driven.ExtractedText, error) {
	format = normalizeFormat(format)
	for _, e := range r.extractors {
		if e.Supports(format) {
			return e.Extract(data, format)
		}
	}
	return driven.ExtractedText{}, fmt.Errorf("unsupported format: %q", format)
}

// normalizeFormat lower-cases and strips a leading dot so both "md" and
// ".MD" resolve the same way.
func normalizeFormat(format string) string {
	return strings.ToLower(strings.TrimPrefix(format, "."))
}
