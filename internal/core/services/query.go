package services

import (
	"context"
	"fmt"

	"github.com/knowgrid/knowgrid/internal/core/domain"
	"github.com/knowgrid/knowgrid/internal/core/ports/driven"
	"github.com/knowgrid/knowgrid/internal/core/ports/driving"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService combines access-filtered retrieval with answer
// synthesis. Retrieval failures abort the query before synthesis; the
// model never sees a partial or unfiltered result set.
type QueryService struct {
	retrieval   *RetrievalService
	answer      *AnswerService
	vectorIndex driven.VectorIndex
}

// NewQueryService creates a query service.
func NewQueryService(
	retrieval *RetrievalService,
	answer *AnswerService,
	vectorIndex driven.VectorIndex,
) *QueryService {
	return &QueryService{
		retrieval:   retrieval,
		answer:      answer,
		vectorIndex: vectorIndex,
	}
}

// Query retrieves context for the request and synthesizes a grounded
// answer with the exact sources used.
func (s *QueryService) Query(ctx context.Context, req driving.QueryRequest) (driving.QueryResult, error) {
	docs, err := s.Search(ctx, req)
	if err != nil {
		return driving.QueryResult{}, err
	}

	return s.answer.GenerateAnswer(ctx, req.Text, docs)
}

// Search retrieves context only, no synthesis.
func (s *QueryService) Search(ctx context.Context, req driving.QueryRequest) ([]domain.RetrievedDocument, error) {
	return s.retrieval.Retrieve(ctx, req.Text, req.Role, req.Department, req.Strategy, req.K)
}

// Stats reports index-wide counters.
func (s *QueryService) Stats(ctx context.Context) (driven.IndexStats, error) {
	stats, err := s.vectorIndex.Stats(ctx)
	if err != nil {
		return driven.IndexStats{}, fmt.Errorf("index stats: %w", err)
	}
	return stats, nil
}
