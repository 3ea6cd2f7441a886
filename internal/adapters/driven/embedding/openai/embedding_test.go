package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowgrid/knowgrid/internal/core/domain"
)

// newTestServer returns a server answering each input with a vector
// derived from its batch index.
func newTestServer(t *testing.T, failures int) (*httptest.Server, *int) {
	t.Helper()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= failures {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":{"message":"overloaded","type":"server_error"}}`)
			return
		}

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			data[i] = map[string]any{
				"embedding": []float64{float64(i), 1, 0},
				"index":     i,
			}
		}
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"data": data}))
	}))

	return server, &calls
}

func newTestService(t *testing.T, baseURL string, batchSize int) *EmbeddingService {
	t.Helper()
	svc, err := NewEmbeddingService(Config{
		APIKey:            "test-key",
		BaseURL:           baseURL,
		Model:             "text-embedding-ada-002",
		Dimensions:        3,
		BatchSize:         batchSize,
		MaxRetries:        2,
		RequestsPerSecond: 1000,
	})
	require.NoError(t, err)
	return svc
}

func TestNewEmbeddingService_RequiresAPIKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.Error(t, err)
}

func TestEmbedDocuments_BatchesAndPreservesOrder(t *testing.T) {
	server, calls := newTestServer(t, 0)
	defer server.Close()

	svc := newTestService(t, server.URL, 2)

	embeddings, err := svc.EmbedDocuments(context.Background(), []string{"a", "b", "c", "d", "e"})

	require.NoError(t, err)
	require.Len(t, embeddings, 5)
	// Three batches of at most two inputs each.
	assert.Equal(t, 3, *calls)
	// Position within each batch drives the fake vector.
	assert.Equal(t, []float32{0, 1, 0}, embeddings[0])
	assert.Equal(t, []float32{1, 1, 0}, embeddings[1])
	assert.Equal(t, []float32{0, 1, 0}, embeddings[2])
	assert.Equal(t, []float32{0, 1, 0}, embeddings[4])
}

func TestEmbedDocuments_RetriesTransientFailures(t *testing.T) {
	server, calls := newTestServer(t, 2)
	defer server.Close()

	svc := newTestService(t, server.URL, 10)

	embeddings, err := svc.EmbedDocuments(context.Background(), []string{"a"})

	require.NoError(t, err)
	require.Len(t, embeddings, 1)
	assert.Equal(t, 3, *calls)
}

func TestEmbedDocuments_ExhaustedRetries(t *testing.T) {
	server, _ := newTestServer(t, 100)
	defer server.Close()

	svc := newTestService(t, server.URL, 10)

	_, err := svc.EmbedDocuments(context.Background(), []string{"a"})

	assert.ErrorIs(t, err, domain.ErrEmbeddingService)
}

func TestEmbedQuery(t *testing.T) {
	server, _ := newTestServer(t, 0)
	defer server.Close()

	svc := newTestService(t, server.URL, 10)

	vector, err := svc.EmbedQuery(context.Background(), "a question")

	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0}, vector)
}
