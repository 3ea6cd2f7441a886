package driven

import (
	"context"

	"github.com/knowgrid/knowgrid/internal/core/domain"
)

// ConversationStore owns chat session logs. Sessions are append-only
// while active and discarded on explicit clear.
type ConversationStore interface {
	// Append adds a turn to the session, creating the session if needed.
	Append(ctx context.Context, sessionID string, turn domain.Turn) error

	// Get returns the session log, or domain.ErrNotFound.
	Get(ctx context.Context, sessionID string) (*domain.Conversation, error)

	// Export returns a serialized snapshot of the session.
	Export(ctx context.Context, sessionID string) ([]byte, error)

	// Clear discards the session.
	Clear(ctx context.Context, sessionID string) error
}
