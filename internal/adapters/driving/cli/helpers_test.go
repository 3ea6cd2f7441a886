package cli

import (
	"context"
	"encoding/json"

	"github.com/knowgrid/knowgrid/internal/adapters/driven/extract"
	"github.com/knowgrid/knowgrid/internal/core/domain"
	"github.com/knowgrid/knowgrid/internal/core/ports/driven"
	"github.com/knowgrid/knowgrid/internal/core/ports/driving"
)

// mockQueryService returns canned retrieval results.
type mockQueryService struct {
	result  driving.QueryResult
	docs    []domain.RetrievedDocument
	stats   driven.IndexStats
	err     error
	lastReq driving.QueryRequest
}

func (m *mockQueryService) Query(_ context.Context, req driving.QueryRequest) (driving.QueryResult, error) {
	m.lastReq = req
	return m.result, m.err
}

func (m *mockQueryService) Search(_ context.Context, req driving.QueryRequest) ([]domain.RetrievedDocument, error) {
	m.lastReq = req
	return m.docs, m.err
}

func (m *mockQueryService) Stats(_ context.Context) (driven.IndexStats, error) {
	return m.stats, m.err
}

// mockIngestService records ingested documents.
type mockIngestService struct {
	result  driving.IngestResult
	removed int
	err     error
	docs    []domain.Document
}

func (m *mockIngestService) Ingest(_ context.Context, doc domain.Document) (driving.IngestResult, error) {
	m.docs = append(m.docs, doc)
	return m.result, m.err
}

func (m *mockIngestService) Remove(_ context.Context, _ string) (int, error) {
	return m.removed, m.err
}

// mockChatService answers every question with a fixed turn.
type mockChatService struct {
	turn  domain.Turn
	turns []domain.Turn
	err   error
}

func (m *mockChatService) Ask(_ context.Context, _ string, req driving.QueryRequest) (domain.Turn, error) {
	if m.err != nil {
		return domain.Turn{}, m.err
	}
	t := m.turn
	t.Query = req.Text
	m.turns = append(m.turns, t)
	return t, nil
}

func (m *mockChatService) History(_ context.Context, _ string) ([]domain.Turn, error) {
	return m.turns, m.err
}

func (m *mockChatService) Export(_ context.Context, _ string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return json.Marshal(m.turns)
}

func (m *mockChatService) Clear(_ context.Context, _ string) error {
	m.turns = nil
	return m.err
}

// setupTestServices wires mock services into the package globals and
// returns a cleanup that restores the previous state and resets flags.
func setupTestServices() func() {
	oldIngest, oldQuery, oldChat := ingestService, queryService, chatService
	oldExtractor := extractor

	ingestService = &mockIngestService{result: driving.IngestResult{DocumentID: "doc-1", ChunksCreated: 3}}
	queryService = &mockQueryService{
		result: driving.QueryResult{
			Answer: "The vacation allowance is 25 days.",
			Sources: []domain.RetrievedDocument{
				{
					ChunkID: "handbook.md:0",
					Content: "Vacation allowance is 25 days per year.",
					Meta: domain.Metadata{
						Source:      "handbook.md",
						Department:  "HR",
						DocType:     "policy",
						AccessLevel: "Employee",
						TotalChunks: 1,
					},
					Score: 0.91,
				},
			},
		},
		docs: []domain.RetrievedDocument{
			{
				ChunkID: "handbook.md:0",
				Content: "Vacation allowance is 25 days per year.",
				Meta: domain.Metadata{
					Source:     "handbook.md",
					Department: "HR",
				},
				Score: 0.91,
			},
		},
		stats: driven.IndexStats{
			DocumentCount: 2,
			ChunkCount:    7,
			Departments:   map[string]int{"HR": 4, "Engineering": 3},
		},
	}
	chatService = &mockChatService{
		turn: domain.Turn{Answer: "mock answer"},
	}
	extractor = extract.NewRegistry()

	return func() {
		ingestService, queryService, chatService = oldIngest, oldQuery, oldChat
		extractor = oldExtractor
		resetFlags()
	}
}

// resetFlags restores the package-level flag variables mutated by
// command execution.
func resetFlags() {
	ingestDepartment, ingestDocType, ingestAccessLevel = "", "", ""
	ingestSection, ingestSource = "", ""
	queryRole = string(domain.RoleGeneral)
	queryDepartment, queryStrategy = "", ""
	queryK = 0
	queryJSON, searchJSON, statsJSON = false, false, false
	chatSession = ""
	verbose = false
}
