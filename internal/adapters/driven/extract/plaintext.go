package extract

import (
	"strings"

	"github.com/knowgrid/knowgrid/internal/core/ports/driven"
)

// Ensure Plaintext implements the interface.
var _ driven.TextExtractor = (*Plaintext)(nil)

// plaintextFormats are the extensions handled as-is.
var plaintextFormats = map[string]bool{
	"txt":  true,
	"text": true,
	"log":  true,
	"csv":  true,
	"json": true,
	"yaml": true,
	"yml":  true,
	"toml": true,
	"":     true, // extension-less files
}

// Plaintext handles formats whose bytes are already the text.
type Plaintext struct{}

// NewPlaintext creates a plain text extractor.
func NewPlaintext() *Plaintext {
	return &Plaintext{}
}

// Supports reports whether the format is plain text.
func (e *Plaintext) Supports(format string) bool {
	return plaintextFormats[normalizeFormat(format)]
}

// Extract returns the bytes as text with line endings normalised.
func (e *Plaintext) Extract(data []byte, _ string) (driven.ExtractedText, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return driven.ExtractedText{Text: text}, nil
}
