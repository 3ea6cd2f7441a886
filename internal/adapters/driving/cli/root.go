// Package cli implements the knowgrid command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/knowgrid/knowgrid/internal/adapters/driven/ai"
	"github.com/knowgrid/knowgrid/internal/adapters/driven/config/file"
	"github.com/knowgrid/knowgrid/internal/adapters/driven/extract"
	memorystore "github.com/knowgrid/knowgrid/internal/adapters/driven/storage/memory"
	"github.com/knowgrid/knowgrid/internal/chunker"
	"github.com/knowgrid/knowgrid/internal/core/ports/driven"
	"github.com/knowgrid/knowgrid/internal/core/ports/driving"
	"github.com/knowgrid/knowgrid/internal/core/services"
	"github.com/knowgrid/knowgrid/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services used by the commands. Wired lazily by initServices so
// commands like version and config work without a configured provider;
// tests inject mocks directly.
var (
	ingestService driving.IngestService
	queryService  driving.QueryService
	chatService   driving.ChatService
	extractor     driven.TextExtractor
	settingsStore driven.SettingsStore
)

// aiResult holds the live adapters so Execute can close them on exit.
var aiResult *ai.InitResult

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "knowgrid",
	Short: "Retrieval and access control for enterprise knowledge",
	Long: `KnowGrid indexes enterprise documents into an access-controlled vector
index and answers questions grounded in the retrieved context.

Documents carry department ownership; queries carry a caller role.
Retrieval only ever surfaces chunks the role is allowed to see.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	defer func() {
		if aiResult != nil {
			aiResult.Close()
		}
	}()
	return rootCmd.Execute()
}

// initServices builds the full service graph from configuration.
// Idempotent: once the query service exists, nothing is rebuilt.
func initServices() error {
	if queryService != nil {
		return nil
	}

	store, err := file.NewSettingsStore("")
	if err != nil {
		return fmt.Errorf("open settings: %w", err)
	}
	settingsStore = store

	settings, err := store.Load()
	if err != nil {
		return err
	}

	prompts, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("open prompt store: %w", err)
	}

	result, err := ai.Init(settings, prompts)
	if err != nil {
		return err
	}
	aiResult = result
	for _, w := range result.Warnings {
		logger.Warn("%s", w)
	}

	splitter := chunker.New(
		chunker.WithChunkSize(settings.Chunking.ChunkSize),
		chunker.WithOverlap(settings.Chunking.Overlap),
	)

	retrieval := services.NewRetrievalService(
		result.VectorIndex,
		result.EmbeddingService,
		result.LLMService,
		services.WithFetchK(settings.Retrieval.FetchK),
		services.WithMMRLambda(settings.Retrieval.MMRLambda),
		services.WithQueryVariants(settings.Retrieval.QueryVariants),
	)
	answer := services.NewAnswerService(result.LLMService, prompts)

	ingestService = services.NewIngestService(splitter, result.EmbeddingService, result.VectorIndex)
	queryService = services.NewQueryService(retrieval, answer, result.VectorIndex)
	chatService = services.NewChatService(queryService, memorystore.NewConversationStore())
	extractor = extract.NewRegistry()

	return nil
}
