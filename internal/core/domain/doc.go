// Package domain defines the core business entities for KnowGrid.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A unit of ingested text with base metadata
//   - Chunk: The atomic unit of indexing and retrieval
//   - RetrievedDocument: A scored chunk returned by retrieval
//   - AccessFilter: A per-query visibility predicate derived from a role
//   - Conversation: An append-only chat session log
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
