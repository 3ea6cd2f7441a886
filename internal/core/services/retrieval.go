package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/knowgrid/knowgrid/internal/core/domain"
	"github.com/knowgrid/knowgrid/internal/core/ports/driven"
	"github.com/knowgrid/knowgrid/internal/logger"
)

// Retrieval defaults.
const (
	// DefaultK is the default number of results per query.
	DefaultK = 5

	// DefaultFetchK is the over-fetch size for the MMR candidate pool.
	DefaultFetchK = 20

	// DefaultMMRLambda balances relevance against redundancy
	// (1.0 = pure relevance, 0.0 = pure diversity).
	DefaultMMRLambda = 0.5

	// DefaultQueryVariants is the number of paraphrases generated for
	// multi-query retrieval.
	DefaultQueryVariants = 3
)

// RetrievalService selects the best access-visible chunks for a query
// under one of three strategies. Each retrieval is stateless given its
// inputs; no state is shared between calls.
type RetrievalService struct {
	vectorIndex      driven.VectorIndex
	embeddingService driven.EmbeddingService
	llmService       driven.LLMService

	fetchK   int
	lambda   float64
	variants int
}

// RetrievalOption configures the retrieval service.
type RetrievalOption func(*RetrievalService)

// WithFetchK sets the MMR over-fetch size.
func WithFetchK(fetchK int) RetrievalOption {
	return func(s *RetrievalService) {
		if fetchK > 0 {
			s.fetchK = fetchK
		}
	}
}

// WithMMRLambda sets the MMR relevance/diversity trade-off.
func WithMMRLambda(lambda float64) RetrievalOption {
	return func(s *RetrievalService) {
		if lambda >= 0 && lambda <= 1 {
			s.lambda = lambda
		}
	}
}

// WithQueryVariants sets the paraphrase count for multi-query retrieval.
func WithQueryVariants(n int) RetrievalOption {
	return func(s *RetrievalService) {
		if n > 0 {
			s.variants = n
		}
	}
}

// NewRetrievalService creates a retrieval service.
// The llmService parameter is optional (can be nil); without it,
// multi-query retrieval degrades to plain similarity.
func NewRetrievalService(
	vectorIndex driven.VectorIndex,
	embeddingService driven.EmbeddingService,
	llmService driven.LLMService,
	opts ...RetrievalOption,
) *RetrievalService {
	s := &RetrievalService{
		vectorIndex:      vectorIndex,
		embeddingService: embeddingService,
		llmService:       llmService,
		fetchK:           DefaultFetchK,
		lambda:           DefaultMMRLambda,
		variants:         DefaultQueryVariants,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Retrieve returns up to k deduplicated documents ranked for the query,
// visible under the caller's role (optionally narrowed to one
// department). An unsatisfiable filter yields zero results, not an
// error; underlying index or embedding failures surface as
// domain.ErrRetrieval.
func (s *RetrievalService) Retrieve(
	ctx context.Context,
	query string,
	role domain.Role,
	department string,
	strategy domain.Strategy,
	k int,
) ([]domain.RetrievedDocument, error) {
	logger.Section("Retrieval")

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.RetrievedDocument{}, nil
	}

	if k <= 0 {
		k = DefaultK
	}
	if strategy == "" {
		strategy = domain.StrategySimilarity
	}
	if !strategy.IsValid() {
		return nil, fmt.Errorf("strategy %q: %w", strategy, domain.ErrInvalidStrategy)
	}

	filter, err := domain.BuildAccessFilter(role, department)
	if err != nil {
		return nil, fmt.Errorf("build access filter for role %q: %w", role, err)
	}

	logger.Debug("Query: %q, strategy: %s, k: %d", query, strategy.Description(), k)
	logger.Debug("Filter: allowAll=%t, departments=%v", filter.AllowAll, filter.Departments)

	if filter.Unsatisfiable() {
		// Requested department outside the role's allow-set. Valid
		// zero-result query, deliberately indistinguishable from
		// "no matching documents" at this layer.
		logger.Warn("Unsatisfiable access filter: role=%s department=%q", role, department)
		return []domain.RetrievedDocument{}, nil
	}

	var docs []domain.RetrievedDocument

	switch strategy {
	case domain.StrategySimilarity:
		docs, err = s.similarity(ctx, query, k, filter)
	case domain.StrategyMMR:
		docs, err = s.mmr(ctx, query, k, filter)
	case domain.StrategyMultiQuery:
		docs, err = s.multiQuery(ctx, query, k, filter)
	default:
		return nil, fmt.Errorf("strategy %q: %w", strategy, domain.ErrInvalidStrategy)
	}

	if err != nil {
		logger.Warn("Retrieval failed: %v", err)
		return nil, err
	}

	logger.Info("Retrieved %d documents", len(docs))
	return docs, nil
}

// similarity embeds the query once and returns the index's top-k.
func (s *RetrievalService) similarity(
	ctx context.Context, query string, k int, filter domain.AccessFilter,
) ([]domain.RetrievedDocument, error) {
	vector, err := s.embeddingService.EmbedQuery(ctx, query)
	if err != nil {
		return nil, retrievalError("embed query", err)
	}

	hits, err := s.vectorIndex.Search(ctx, vector, k, filter)
	if err != nil {
		return nil, retrievalError("vector search", err)
	}

	return dedupeHits(hits), nil
}

// mmr over-fetches a candidate pool and re-ranks it with maximum
// marginal relevance, suppressing near-duplicate chunks that pure
// similarity would over-rank.
func (s *RetrievalService) mmr(
	ctx context.Context, query string, k int, filter domain.AccessFilter,
) ([]domain.RetrievedDocument, error) {
	fetchK := s.fetchK
	if fetchK < k {
		fetchK = k
	}

	vector, err := s.embeddingService.EmbedQuery(ctx, query)
	if err != nil {
		return nil, retrievalError("embed query", err)
	}

	pool, err := s.vectorIndex.Search(ctx, vector, fetchK, filter)
	if err != nil {
		return nil, retrievalError("vector search", err)
	}

	pool = uniqueHits(pool)
	selected := mmrSelect(pool, k, s.lambda)

	logger.Debug("MMR: pool=%d, selected=%d, lambda=%.2f", len(pool), len(selected), s.lambda)

	docs := make([]domain.RetrievedDocument, len(selected))
	for i, hit := range selected {
		docs[i] = hitToDocument(hit)
	}
	return docs, nil
}

// multiQuery expands the query into paraphrases, runs similarity
// retrieval for the original and each variant concurrently under the
// same filter, and merges the result sets keeping the highest score
// per chunk. If paraphrase generation fails the request degrades to
// plain similarity on the original query.
func (s *RetrievalService) multiQuery(
	ctx context.Context, query string, k int, filter domain.AccessFilter,
) ([]domain.RetrievedDocument, error) {
	queries := []string{query}

	if s.llmService == nil {
		logger.Warn("Multi-query: LLM unavailable, using similarity retrieval")
		return s.similarity(ctx, query, k, filter)
	}

	variants, err := s.llmService.ExpandQuery(ctx, query, s.variants)
	if err != nil {
		logger.Warn("Multi-query: paraphrase generation failed: %v (using similarity retrieval)", err)
		return s.similarity(ctx, query, k, filter)
	}

	for _, v := range variants {
		v = strings.TrimSpace(v)
		if v != "" && !strings.EqualFold(v, query) {
			queries = append(queries, v)
		}
	}
	logger.Debug("Multi-query: %d query variants", len(queries))

	// The per-variant round-trips are independent; run them
	// concurrently and merge once all complete.
	results := make([][]driven.VectorHit, len(queries))
	g, gctx := errgroup.WithContext(ctx)

	for i, q := range queries {
		g.Go(func() error {
			vector, err := s.embeddingService.EmbedQuery(gctx, q)
			if err != nil {
				return retrievalError("embed query variant", err)
			}
			hits, err := s.vectorIndex.Search(gctx, vector, k, filter)
			if err != nil {
				return retrievalError("vector search variant", err)
			}
			results[i] = hits
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return mergeHits(results, k), nil
}

// mmrSelect iteratively picks the candidate maximizing
// lambda*sim(doc, query) - (1-lambda)*max sim(doc, selected),
// breaking ties by original similarity rank.
func mmrSelect(pool []driven.VectorHit, k int, lambda float64) []driven.VectorHit {
	if len(pool) == 0 || k <= 0 {
		return nil
	}

	selected := make([]driven.VectorHit, 0, k)
	remaining := make([]driven.VectorHit, len(pool))
	copy(remaining, pool)

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := -1
		bestScore := math.Inf(-1)

		for i, cand := range remaining {
			// True max over the selected set: anti-correlated candidates
			// carry a negative term, which rewards them rather than
			// flooring at zero.
			redundancy := 0.0
			if len(selected) > 0 {
				redundancy = math.Inf(-1)
				for _, sel := range selected {
					sim := float64(cosineSimilarity(cand.Chunk.Embedding, sel.Chunk.Embedding))
					if sim > redundancy {
						redundancy = sim
					}
				}
			}

			score := lambda*cand.Similarity - (1-lambda)*redundancy

			// Strict comparison: on ties the earlier (higher-ranked)
			// candidate wins because the pool is sorted by similarity.
			if score > bestScore {
				bestIdx = i
				bestScore = score
			}
		}

		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}

// mergeHits unions per-query result sets, deduplicates by chunk id
// keeping the highest score seen, sorts descending and truncates to k.
func mergeHits(results [][]driven.VectorHit, k int) []domain.RetrievedDocument {
	best := make(map[string]driven.VectorHit)
	for _, hits := range results {
		for _, hit := range hits {
			if prev, ok := best[hit.Chunk.ID]; !ok || hit.Similarity > prev.Similarity {
				best[hit.Chunk.ID] = hit
			}
		}
	}

	merged := make([]domain.RetrievedDocument, 0, len(best))
	for _, hit := range best {
		merged = append(merged, hitToDocument(hit))
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].ChunkID < merged[j].ChunkID
	})

	if len(merged) > k {
		merged = merged[:k]
	}
	return merged
}

// dedupeHits keeps the first (highest-ranked) hit per chunk id.
func dedupeHits(hits []driven.VectorHit) []domain.RetrievedDocument {
	docs := make([]domain.RetrievedDocument, 0, len(hits))
	seen := make(map[string]bool, len(hits))
	for _, hit := range hits {
		if seen[hit.Chunk.ID] {
			continue
		}
		seen[hit.Chunk.ID] = true
		docs = append(docs, hitToDocument(hit))
	}
	return docs
}

// uniqueHits keeps the first hit per chunk id, preserving order.
func uniqueHits(hits []driven.VectorHit) []driven.VectorHit {
	out := make([]driven.VectorHit, 0, len(hits))
	seen := make(map[string]bool, len(hits))
	for _, hit := range hits {
		if seen[hit.Chunk.ID] {
			continue
		}
		seen[hit.Chunk.ID] = true
		out = append(out, hit)
	}
	return out
}

// hitToDocument converts an index hit to a retrieval result.
// The reported score is the chunk's cosine similarity to the query;
// MMR affects selection and ordering only.
func hitToDocument(hit driven.VectorHit) domain.RetrievedDocument {
	return domain.RetrievedDocument{
		ChunkID: hit.Chunk.ID,
		Content: hit.Chunk.Text,
		Meta:    hit.Chunk.Meta,
		Score:   clamp01(hit.Similarity),
	}
}

// cosineSimilarity computes the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical direction.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}

// clamp01 bounds a score to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// retrievalError wraps an infrastructure failure so callers can match
// both the retrieval sentinel and the underlying cause.
func retrievalError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrRetrieval, err)
}
