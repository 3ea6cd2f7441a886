package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowgrid/knowgrid/internal/core/domain"
)

func newTestStore(t *testing.T) *SettingsStore {
	t.Helper()
	store, err := NewSettingsStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestSettingsStore_Load_NoFileReturnsDefaults(t *testing.T) {
	store := newTestStore(t)

	settings, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, domain.IndexBackendSQLite, settings.Index.Backend)
	assert.Equal(t, 1000, settings.Chunking.ChunkSize)
	assert.Equal(t, 200, settings.Chunking.Overlap)
	assert.Equal(t, domain.StrategySimilarity, settings.Retrieval.Strategy)
	assert.Equal(t, 5, settings.Retrieval.K)
	assert.False(t, settings.Embedding.IsConfigured())
	assert.False(t, settings.LLM.IsConfigured())
}

func TestSettingsStore_SaveAndLoad_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	want := domain.DefaultAppSettings()
	want.Embedding = domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		Model:    "nomic-embed-text",
		BaseURL:  "http://localhost:11434",
	}
	want.LLM = domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		Model:    "llama3.2",
		BaseURL:  "http://localhost:11434",
	}
	want.Index.Backend = domain.IndexBackendMemory
	want.Chunking.ChunkSize = 500
	want.Retrieval.Strategy = domain.StrategyMMR
	want.Retrieval.MMRLambda = 0.7

	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSettingsStore_Load_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	store, err := NewSettingsStore(dir)
	require.NoError(t, err)

	partial := `[embedding]
provider = "ollama"
model = "all-minilm"
`
	require.NoError(t, os.WriteFile(store.Path(), []byte(partial), 0600))

	settings, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "all-minilm", settings.Embedding.Model)
	// Everything the file omits keeps its default.
	assert.Equal(t, domain.IndexBackendSQLite, settings.Index.Backend)
	assert.Equal(t, 1000, settings.Chunking.ChunkSize)
	assert.Equal(t, 20, settings.Retrieval.FetchK)
}

func TestSettingsStore_Load_MalformedFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("not [valid toml"), 0600))

	_, err := store.Load()

	assert.Error(t, err)
}

func TestSettingsStore_EnvAPIKeyFillsEmptyKey(t *testing.T) {
	store := newTestStore(t)

	cfg := `[llm]
provider = "anthropic"
model = "claude-3-5-sonnet-latest"
`
	require.NoError(t, os.WriteFile(store.Path(), []byte(cfg), 0600))
	t.Setenv("ANTHROPIC_API_KEY", "env-key")

	settings, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, "env-key", settings.LLM.APIKey)
	assert.True(t, settings.LLM.IsConfigured())
}

func TestSettingsStore_FileAPIKeyWinsOverEnv(t *testing.T) {
	store := newTestStore(t)

	cfg := `[embedding]
provider = "openai"
model = "text-embedding-3-small"
api_key = "file-key"
`
	require.NoError(t, os.WriteFile(store.Path(), []byte(cfg), 0600))
	t.Setenv("OPENAI_API_KEY", "env-key")

	settings, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, "file-key", settings.Embedding.APIKey)
}

func TestSettingsStore_DataDirEnvOverride(t *testing.T) {
	store := newTestStore(t)
	t.Setenv("KNOWGRID_DATA_DIR", "/tmp/knowgrid-data")

	settings, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/knowgrid-data", settings.Index.DataDir)
}

func TestSettingsStore_Save_DoesNotPersistEnvKeys(t *testing.T) {
	store := newTestStore(t)

	settings := domain.DefaultAppSettings()
	settings.LLM = domain.LLMSettings{
		Provider: domain.AIProviderAnthropic,
		Model:    "claude-3-5-sonnet-latest",
		APIKey:   "secret-from-env",
	}
	require.NoError(t, store.Save(settings))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret-from-env")
}

func TestSettingsStore_Save_KeepsFileKeys(t *testing.T) {
	store := newTestStore(t)

	cfg := `[llm]
provider = "openai"
api_key = "file-key"
`
	require.NoError(t, os.WriteFile(store.Path(), []byte(cfg), 0600))

	settings, err := store.Load()
	require.NoError(t, err)
	require.NoError(t, store.Save(settings))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "file-key")
}

func TestSettingsStore_Path(t *testing.T) {
	dir := t.TempDir()
	store, err := NewSettingsStore(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}

func TestSettingsStore_Exists(t *testing.T) {
	store := newTestStore(t)

	assert.False(t, store.Exists())
	require.NoError(t, store.Save(domain.DefaultAppSettings()))
	assert.True(t, store.Exists())
}
