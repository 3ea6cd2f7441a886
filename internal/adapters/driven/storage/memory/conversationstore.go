// Package memory provides in-memory driven-port stores.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/knowgrid/knowgrid/internal/core/domain"
	"github.com/knowgrid/knowgrid/internal/core/ports/driven"
)

// Ensure ConversationStore implements the interface.
var _ driven.ConversationStore = (*ConversationStore)(nil)

// ConversationStore is an in-memory implementation of
// driven.ConversationStore. Sessions live for the process lifetime.
type ConversationStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Conversation
}

// NewConversationStore creates a new in-memory conversation store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		sessions: make(map[string]*domain.Conversation),
	}
}

// Append adds a turn to the session, creating the session if needed.
func (s *ConversationStore) Append(_ context.Context, sessionID string, turn domain.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.sessions[sessionID]
	if !ok {
		conv = &domain.Conversation{
			SessionID: sessionID,
			StartedAt: time.Now(),
		}
		s.sessions[sessionID] = conv
	}
	conv.Append(turn)
	return nil
}

// Get returns a copy of the session log.
func (s *ConversationStore) Get(_ context.Context, sessionID string) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}

	snapshot := *conv
	snapshot.Turns = make([]domain.Turn, len(conv.Turns))
	copy(snapshot.Turns, conv.Turns)
	return &snapshot, nil
}

// Export returns the session serialized as indented JSON.
func (s *ConversationStore) Export(ctx context.Context, sessionID string) ([]byte, error) {
	conv, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export session %q: %w", sessionID, err)
	}
	return data, nil
}

// Clear discards the session. Clearing an unknown session is a no-op.
func (s *ConversationStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
