package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"invalid document", ErrInvalidDocument, "invalid_document"},
		{"dimension mismatch", ErrDimensionMismatch, "dimension_mismatch"},
		{"embedding service", ErrEmbeddingService, "embedding_service_error"},
		{"generation", ErrGeneration, "generation_error"},
		{"invalid role", ErrInvalidRole, "invalid_role"},
		{"invalid strategy", ErrInvalidStrategy, "invalid_strategy"},
		{"retrieval", ErrRetrieval, "retrieval_error"},
		{"not found", ErrNotFound, "not_found"},
		{"unknown", errors.New("boom"), "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorKind(tt.err))
		})
	}
}

func TestErrorKindSeesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("search: %w", fmt.Errorf("index scan: %w", ErrRetrieval))

	assert.Equal(t, "retrieval_error", ErrorKind(wrapped))
	assert.ErrorIs(t, wrapped, ErrRetrieval)
}
