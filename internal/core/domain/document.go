package domain

import (
	"strings"
	"unicode/utf8"
)

// DocumentMeta is the base metadata supplied with an ingested document.
// Every chunk produced from the document inherits these fields verbatim.
type DocumentMeta struct {
	// Source identifies the document (filename, URI, ticket id, ...).
	Source string

	// Department owns the document. Defaults to "General".
	Department string

	// DocType is the document category. Defaults to "Document".
	DocType string

	// AccessLevel is the sensitivity label. Defaults to "Employee".
	AccessLevel string

	// Section is an optional section heading applied to all chunks.
	Section string

	// PageNumber is an optional 1-based page, 0 when unknown.
	PageNumber int
}

// Default metadata values for fields the caller leaves empty.
const (
	DefaultDepartment  = "General"
	DefaultDocType     = "Document"
	DefaultAccessLevel = "Employee"
)

// Document is the unit of ingestion: extracted text plus base metadata.
// It is not persisted itself - only the chunks produced from it are.
type Document struct {
	// Text is the full extracted text.
	Text string

	// Meta is the base metadata inherited by every chunk.
	Meta DocumentMeta
}

// Normalize fills metadata defaults and trims the source identifier.
func (m DocumentMeta) Normalize() DocumentMeta {
	m.Source = strings.TrimSpace(m.Source)
	if m.Department == "" {
		m.Department = DefaultDepartment
	}
	if m.DocType == "" {
		m.DocType = DefaultDocType
	}
	if m.AccessLevel == "" {
		m.AccessLevel = DefaultAccessLevel
	}
	return m
}

// Validate reports whether the document can be ingested.
// Text that is empty after whitespace normalization is rejected:
// it would produce zero retrievable chunks.
func (d Document) Validate() error {
	if strings.TrimSpace(d.Meta.Source) == "" {
		return ErrInvalidDocument
	}
	if strings.TrimSpace(d.Text) == "" {
		return ErrInvalidDocument
	}
	if !utf8.ValidString(d.Text) {
		return ErrInvalidDocument
	}
	return nil
}

// ChunkMeta builds the metadata for one chunk of this document.
func (d Document) ChunkMeta(index, total int) Metadata {
	m := d.Meta.Normalize()
	return Metadata{
		Source:      m.Source,
		Department:  m.Department,
		DocType:     m.DocType,
		AccessLevel: m.AccessLevel,
		ChunkIndex:  index,
		TotalChunks: total,
		Section:     m.Section,
		PageNumber:  m.PageNumber,
	}
}
