package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/knowgrid/knowgrid/internal/adapters/driven/ai"
	"github.com/knowgrid/knowgrid/internal/adapters/driven/config/file"
	"github.com/knowgrid/knowgrid/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage KnowGrid configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the configured providers are reachable",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

func openSettingsStore() (*file.SettingsStore, error) {
	return file.NewSettingsStore("")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	store, err := openSettingsStore()
	if err != nil {
		return err
	}

	if store.Exists() {
		cmd.Printf("Config already exists at %s\n", store.Path())
		return nil
	}

	if err := store.Save(domain.DefaultAppSettings()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	cmd.Printf("Wrote default config to %s\n", store.Path())
	cmd.Println("Edit the [embedding] and [llm] sections to enable providers.")
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	store, err := openSettingsStore()
	if err != nil {
		return err
	}

	settings, err := store.Load()
	if err != nil {
		return err
	}

	cmd.Printf("Config file: %s\n\n", store.Path())
	cmd.Printf("Embedding: %s\n", describeProvider(settings.Embedding.Provider, settings.Embedding.Model, settings.Embedding.IsConfigured()))
	cmd.Printf("LLM:       %s\n", describeProvider(settings.LLM.Provider, settings.LLM.Model, settings.LLM.IsConfigured()))
	cmd.Printf("Index:     %s", settings.Index.Backend)
	if settings.Index.DataDir != "" {
		cmd.Printf(" (%s)", settings.Index.DataDir)
	}
	cmd.Println()
	cmd.Printf("Chunking:  size %d, overlap %d\n", settings.Chunking.ChunkSize, settings.Chunking.Overlap)
	cmd.Printf("Retrieval: %s, k=%d\n", settings.Retrieval.Strategy, settings.Retrieval.K)
	return nil
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	store, err := openSettingsStore()
	if err != nil {
		return err
	}

	settings, err := store.Load()
	if err != nil {
		return err
	}

	failed := false

	if !settings.Embedding.IsConfigured() {
		cmd.Println("embedding: not configured")
		failed = true
	} else if err := ai.ValidateEmbeddingConfig(&settings.Embedding); err != nil {
		cmd.Printf("embedding: %v\n", err)
		failed = true
	} else {
		cmd.Printf("embedding: ok (%s/%s)\n", settings.Embedding.Provider, settings.Embedding.Model)
	}

	if !settings.LLM.IsConfigured() {
		cmd.Println("llm: not configured (multi-query and answers disabled)")
	} else if err := ai.ValidateLLMConfig(&settings.LLM); err != nil {
		cmd.Printf("llm: %v\n", err)
		failed = true
	} else {
		cmd.Printf("llm: ok (%s/%s)\n", settings.LLM.Provider, settings.LLM.Model)
	}

	if failed {
		return fmt.Errorf("configuration is not usable")
	}
	return nil
}

// describeProvider renders a one-line provider summary without leaking
// API keys.
func describeProvider(provider domain.AIProvider, model string, configured bool) string {
	if provider == "" {
		return "not configured"
	}
	status := "missing API key"
	if configured {
		status = "configured"
	}
	if model == "" {
		return fmt.Sprintf("%s (%s)", provider, status)
	}
	return fmt.Sprintf("%s/%s (%s)", provider, model, status)
}
