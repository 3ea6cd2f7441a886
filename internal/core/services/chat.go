package services

import (
	"context"
	"fmt"
	"time"

	"github.com/knowgrid/knowgrid/internal/core/domain"
	"github.com/knowgrid/knowgrid/internal/core/ports/driven"
	"github.com/knowgrid/knowgrid/internal/core/ports/driving"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// ChatService runs query turns against an externally-owned,
// append-only conversation log. Retrieval and synthesis stay stateless
// per call; all session state lives in the store.
type ChatService struct {
	query         driving.QueryService
	conversations driven.ConversationStore
}

// NewChatService creates a chat service.
func NewChatService(query driving.QueryService, conversations driven.ConversationStore) *ChatService {
	return &ChatService{
		query:         query,
		conversations: conversations,
	}
}

// Ask answers a query and appends the completed turn to the session.
func (s *ChatService) Ask(ctx context.Context, sessionID string, req driving.QueryRequest) (domain.Turn, error) {
	start := time.Now()

	result, err := s.query.Query(ctx, req)
	if err != nil {
		return domain.Turn{}, err
	}

	turn := domain.Turn{
		Query:     req.Text,
		Answer:    result.Answer,
		Sources:   result.Sources,
		Timestamp: time.Now(),
		Latency:   time.Since(start),
	}

	if err := s.conversations.Append(ctx, sessionID, turn); err != nil {
		return domain.Turn{}, fmt.Errorf("append turn to session %q: %w", sessionID, err)
	}

	return turn, nil
}

// History returns the session's turns in order.
func (s *ChatService) History(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	conv, err := s.conversations.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return conv.Turns, nil
}

// Export returns a serialized snapshot of the session.
func (s *ChatService) Export(ctx context.Context, sessionID string) ([]byte, error) {
	return s.conversations.Export(ctx, sessionID)
}

// Clear discards the session.
func (s *ChatService) Clear(ctx context.Context, sessionID string) error {
	return s.conversations.Clear(ctx, sessionID)
}
