package driven

// ExtractedText is the output of format-specific text extraction.
type ExtractedText struct {
	// Text is the full UTF-8 text.
	Text string

	// Pages holds per-page text for paginated formats, nil otherwise.
	Pages []PageText
}

// PageText is the text of a single page.
type PageText struct {
	// Number is the 1-based page number.
	Number int

	// Text is the page content.
	Text string
}

// TextExtractor converts file bytes into plain text plus optional page
// metadata. Format-specific parsing (PDF, DOCX) lives behind this port;
// the core only ever sees extracted text.
type TextExtractor interface {
	// Supports reports whether the extractor handles the format
	// (lower-case extension without dot, e.g. "txt", "md").
	Supports(format string) bool

	// Extract produces the document text.
	Extract(data []byte, format string) (ExtractedText, error)
}
