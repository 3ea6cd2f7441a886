package services

import (
	"context"
	"fmt"

	"github.com/knowgrid/knowgrid/internal/core/domain"
	"github.com/knowgrid/knowgrid/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Vectors are looked up by text; unknown texts get the default vector.
type mockEmbeddingService struct {
	vectors        map[string][]float32
	defaultVector  []float32
	embedErr       error
	dims           int
	documentCalls  int
	queryCalls     int
	embeddedQuery  []string
	vectorMismatch bool
}

func (m *mockEmbeddingService) vectorFor(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	if m.defaultVector != nil {
		return m.defaultVector
	}
	return []float32{1, 0, 0}
}

func (m *mockEmbeddingService) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	m.documentCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i, t := range texts {
		result[i] = m.vectorFor(t)
	}
	if m.vectorMismatch && len(result) > 0 {
		result = result[:len(result)-1]
	}
	return result, nil
}

func (m *mockEmbeddingService) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	m.queryCalls++
	m.embeddedQuery = append(m.embeddedQuery, text)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vectorFor(text), nil
}

func (m *mockEmbeddingService) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return 3
}

func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }

func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }

func (m *mockEmbeddingService) Close() error { return nil }

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	response      string
	generateErr   error
	expansions    []string
	expandErr     error
	generateCalls int
	expandCalls   int
	lastPrompt    string
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.generateCalls++
	m.lastPrompt = prompt
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.response, nil
}

func (m *mockLLMService) ExpandQuery(_ context.Context, _ string, n int) ([]string, error) {
	m.expandCalls++
	if m.expandErr != nil {
		return nil, m.expandErr
	}
	if len(m.expansions) > n {
		return m.expansions[:n], nil
	}
	return m.expansions, nil
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }

func (m *mockLLMService) Ping(_ context.Context) error { return nil }

func (m *mockLLMService) Close() error { return nil }

// mockVectorIndex implements driven.VectorIndex with injectable errors.
type mockVectorIndex struct {
	hits      []driven.VectorHit
	searchErr error
	addErr    error
	deleteErr error
	statsErr  error
	added     [][]domain.Chunk
	deleted   []string
	stats     driven.IndexStats
}

func (m *mockVectorIndex) Add(_ context.Context, chunks []domain.Chunk) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.added = append(m.added, chunks)
	return nil
}

func (m *mockVectorIndex) DeleteSource(_ context.Context, source string) (int, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	m.deleted = append(m.deleted, source)
	return 0, nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int, _ domain.AccessFilter) ([]driven.VectorHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockVectorIndex) Stats(_ context.Context) (driven.IndexStats, error) {
	if m.statsErr != nil {
		return driven.IndexStats{}, m.statsErr
	}
	return m.stats, nil
}

func (m *mockVectorIndex) Close() error { return nil }

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
	loadErr error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.loadErr != nil {
		return "", m.loadErr
	}
	template, ok := m.prompts[name]
	if !ok {
		return "", fmt.Errorf("prompt %q: %w", name, domain.ErrNotFound)
	}
	return template, nil
}

// --- Test data helpers ---

func vectorHit(id, text, department string, embedding []float32, similarity float64) driven.VectorHit {
	return driven.VectorHit{
		Chunk: domain.Chunk{
			ID:        id,
			Text:      text,
			Embedding: embedding,
			Meta: domain.Metadata{
				Source:     "handbook.md",
				Department: department,
			},
		},
		Similarity: similarity,
	}
}

func retrievedDoc(id, content string, score float64) domain.RetrievedDocument {
	return domain.RetrievedDocument{
		ChunkID: id,
		Content: content,
		Meta: domain.Metadata{
			Source:     "handbook.md",
			Department: "General",
		},
		Score: score,
	}
}
