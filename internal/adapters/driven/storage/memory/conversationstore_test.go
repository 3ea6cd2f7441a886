package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowgrid/knowgrid/internal/core/domain"
)

func turn(query, answer string) domain.Turn {
	return domain.Turn{
		Query:     query,
		Answer:    answer,
		Timestamp: time.Now(),
		Latency:   25 * time.Millisecond,
	}
}

func TestConversationStore_AppendAndGet(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", turn("q1", "a1")))
	require.NoError(t, store.Append(ctx, "s1", turn("q2", "a2")))

	conv, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", conv.SessionID)
	assert.False(t, conv.StartedAt.IsZero())
	require.Equal(t, 2, conv.Len())
	assert.Equal(t, "q1", conv.Turns[0].Query)
	assert.Equal(t, "q2", conv.Turns[1].Query)
}

func TestConversationStore_Get_NotFound(t *testing.T) {
	store := NewConversationStore()

	conv, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, conv)
}

func TestConversationStore_Get_ReturnsSnapshot(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", turn("q1", "a1")))

	conv, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	conv.Turns[0].Answer = "mutated"

	fresh, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "a1", fresh.Turns[0].Answer)
}

func TestConversationStore_Export(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", turn("what is the leave policy?", "25 days.")))

	data, err := store.Export(ctx, "s1")
	require.NoError(t, err)

	var decoded domain.Conversation
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "s1", decoded.SessionID)
	require.Len(t, decoded.Turns, 1)
	assert.Equal(t, "what is the leave policy?", decoded.Turns[0].Query)
}

func TestConversationStore_Export_NotFound(t *testing.T) {
	store := NewConversationStore()

	_, err := store.Export(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConversationStore_Clear(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", turn("q", "a")))
	require.NoError(t, store.Clear(ctx, "s1"))

	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Clearing again is a no-op.
	assert.NoError(t, store.Clear(ctx, "s1"))
}

func TestConversationStore_Concurrency(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	numGoroutines := 50

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			session := fmt.Sprintf("s%d", id%5)
			_ = store.Append(ctx, session, turn("q", "a"))
			_, _ = store.Get(ctx, session)
		}(i)
	}
	wg.Wait()

	total := 0
	for i := 0; i < 5; i++ {
		conv, err := store.Get(ctx, fmt.Sprintf("s%d", i))
		require.NoError(t, err)
		total += conv.Len()
	}
	assert.Equal(t, numGoroutines, total)
}
