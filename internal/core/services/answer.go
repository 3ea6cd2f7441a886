package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/knowgrid/knowgrid/internal/core/domain"
	"github.com/knowgrid/knowgrid/internal/core/ports/driven"
	"github.com/knowgrid/knowgrid/internal/core/ports/driving"
	"github.com/knowgrid/knowgrid/internal/logger"
)

// FallbackAnswer is returned verbatim when retrieval produced no
// context. The generative model is never invoked on empty context.
const FallbackAnswer = "I don't have any relevant information in the knowledge base to answer this question."

// SourcesOnlyAnswer is returned alongside the retrieved sources when no
// generative model is configured. Retrieval stays fully usable without
// an LLM; only synthesis is skipped.
const SourcesOnlyAnswer = "No LLM is configured; showing the retrieved sources only."

// defaultAnswerPrompt is used when no prompt store is configured or the
// stored template cannot be loaded. Takes context and question.
const defaultAnswerPrompt = `You are an enterprise knowledge assistant.

Based on the provided context, answer the user's question accurately and concisely.
Answer ONLY from the context. If the answer cannot be found in the context, say so clearly.
Always cite the source documents.

Context:
%s

Question: %s

Answer:`

// Deterministic generation parameters: grounding-faithfulness over
// creativity.
const (
	answerMaxTokens   = 1024
	answerTemperature = 0.2
)

// AnswerService formats retrieved documents into a grounded prompt and
// produces an answer plus the exact source list used.
type AnswerService struct {
	llmService  driven.LLMService
	promptStore driven.PromptStore
}

// NewAnswerService creates an answer service.
// The promptStore parameter is optional (can be nil).
func NewAnswerService(llmService driven.LLMService, promptStore driven.PromptStore) *AnswerService {
	return &AnswerService{
		llmService:  llmService,
		promptStore: promptStore,
	}
}

// GenerateAnswer synthesizes a grounded answer from the retrieved
// documents. Sources in the result are exactly the input documents,
// same order and scores, so callers can audit citation faithfulness.
// A generative failure surfaces as domain.ErrGeneration; it is never
// silently replaced with a canned answer.
func (s *AnswerService) GenerateAnswer(
	ctx context.Context, query string, docs []domain.RetrievedDocument,
) (driving.QueryResult, error) {
	logger.Section("Answer Synthesis")

	if len(docs) == 0 {
		logger.Debug("No context retrieved, returning fallback answer")
		return driving.QueryResult{
			Answer:  FallbackAnswer,
			Sources: []domain.RetrievedDocument{},
		}, nil
	}

	if s.llmService == nil {
		logger.Warn("No LLM configured, returning sources without synthesis")
		return driving.QueryResult{
			Answer:  SourcesOnlyAnswer,
			Sources: docs,
		}, nil
	}

	contextBlock := formatContext(docs)
	prompt := fmt.Sprintf(s.answerPrompt(), contextBlock, query)

	logger.Debug("Prompting with %d context documents (%d chars)", len(docs), len(contextBlock))

	answer, err := s.llmService.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   answerMaxTokens,
		Temperature: answerTemperature,
	})
	if err != nil {
		return driving.QueryResult{}, fmt.Errorf("generate answer: %w: %w", domain.ErrGeneration, err)
	}

	logger.Info("Generated answer (%d chars)", len(answer))

	return driving.QueryResult{
		Answer:  strings.TrimSpace(answer),
		Sources: docs,
	}, nil
}

// answerPrompt returns the synthesis template, preferring the store.
func (s *AnswerService) answerPrompt() string {
	if s.promptStore == nil {
		return defaultAnswerPrompt
	}
	template, err := s.promptStore.Load(driven.PromptAnswer)
	if err != nil || template == "" {
		logger.Warn("Answer prompt unavailable from store: %v (using default)", err)
		return defaultAnswerPrompt
	}
	return template
}

// formatContext builds the context block: each document's text prefixed
// with a citation header, in ranking order so the model sees the most
// relevant evidence first.
func formatContext(docs []domain.RetrievedDocument) string {
	var b strings.Builder
	for i, doc := range docs {
		fmt.Fprintf(&b, "[Document %d: %s]\n%s\n\n", i+1, doc.CitationHeader(), doc.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}
