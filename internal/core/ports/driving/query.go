package driving

import (
	"context"

	"github.com/knowgrid/knowgrid/internal/core/domain"
	"github.com/knowgrid/knowgrid/internal/core/ports/driven"
)

// QueryRequest describes one retrieval or question-answering request.
type QueryRequest struct {
	// Text is the natural-language query.
	Text string

	// Role is the caller's access role (supplied, not verified).
	Role domain.Role

	// Department optionally narrows results to a single department.
	// A department outside the role's allow-set yields zero results.
	Department string

	// Strategy selects the retrieval strategy. Empty means similarity.
	Strategy domain.Strategy

	// K is the maximum number of results. Zero means the default.
	K int
}

// QueryResult is a grounded answer plus the exact sources used.
type QueryResult struct {
	// Answer is the generated answer, or the fixed fallback when no
	// context was retrieved.
	Answer string

	// Sources are the retrieved documents in ranking order with their
	// scores, exactly as fed to the generative model.
	Sources []domain.RetrievedDocument
}

// QueryService drives the query path:
// retrieval (access-filtered) -> answer synthesis.
type QueryService interface {
	// Query retrieves context and synthesizes a grounded answer.
	Query(ctx context.Context, req QueryRequest) (QueryResult, error)

	// Search retrieves context only, no synthesis.
	Search(ctx context.Context, req QueryRequest) ([]domain.RetrievedDocument, error)

	// Stats reports index-wide counters.
	Stats(ctx context.Context) (driven.IndexStats, error)
}

// ChatService runs query turns against a session-scoped conversation log.
type ChatService interface {
	// Ask answers a query and appends the turn to the session.
	Ask(ctx context.Context, sessionID string, req QueryRequest) (domain.Turn, error)

	// History returns the session's turns in order.
	History(ctx context.Context, sessionID string) ([]domain.Turn, error)

	// Export returns a serialized snapshot of the session.
	Export(ctx context.Context, sessionID string) ([]byte, error)

	// Clear discards the session.
	Clear(ctx context.Context, sessionID string) error
}
