package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/knowgrid/knowgrid/internal/core/domain"
	"github.com/knowgrid/knowgrid/internal/core/ports/driven"
)

// Ensure SettingsStore implements the interface.
var _ driven.SettingsStore = (*SettingsStore)(nil)

// SettingsStore is a TOML-backed implementation of driven.SettingsStore.
// Settings live in a single user-editable file; API keys may be supplied
// via environment variables instead of the file so secrets stay out of
// plain-text config.
type SettingsStore struct {
	mu       sync.Mutex
	filePath string
}

// tomlSettings mirrors domain.AppSettings with TOML field tags. The
// domain types stay free of serialization concerns.
type tomlSettings struct {
	Embedding tomlProvider  `toml:"embedding"`
	LLM       tomlProvider  `toml:"llm"`
	Index     tomlIndex     `toml:"index"`
	Chunking  tomlChunking  `toml:"chunking"`
	Retrieval tomlRetrieval `toml:"retrieval"`
}

type tomlProvider struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	BaseURL  string `toml:"base_url"`
	APIKey   string `toml:"api_key"`
}

type tomlIndex struct {
	Backend string `toml:"backend"`
	DataDir string `toml:"data_dir"`
}

type tomlChunking struct {
	ChunkSize int `toml:"chunk_size"`
	Overlap   int `toml:"overlap"`
}

type tomlRetrieval struct {
	Strategy      string  `toml:"strategy"`
	K             int     `toml:"k"`
	FetchK        int     `toml:"fetch_k"`
	MMRLambda     float64 `toml:"mmr_lambda"`
	QueryVariants int     `toml:"query_variants"`
}

// NewSettingsStore creates a TOML settings store.
// If configDir is empty, defaults to ~/.knowgrid/config.toml.
func NewSettingsStore(configDir string) (*SettingsStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".knowgrid")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &SettingsStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}, nil
}

// Load reads settings from the TOML file if it exists, layers them over
// the defaults, then applies environment overrides for API keys.
func (s *SettingsStore) Load() (domain.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := domain.DefaultAppSettings()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return domain.AppSettings{}, fmt.Errorf("read config: %w", err)
		}
		// No config file yet - defaults plus environment.
	} else {
		var cfg tomlSettings
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return domain.AppSettings{}, fmt.Errorf("parse %s: %w", s.filePath, err)
		}
		applyFile(&settings, cfg)
	}

	applyEnvOverrides(&settings)
	return settings, nil
}

// Save persists the given settings to the TOML file. API keys that came
// from the environment are written back only if they were already in
// the file; Save never introduces a key the user kept out of it.
func (s *SettingsStore) Save(settings domain.AppSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := tomlSettings{
		Embedding: tomlProvider{
			Provider: settings.Embedding.Provider.String(),
			Model:    settings.Embedding.Model,
			BaseURL:  settings.Embedding.BaseURL,
			APIKey:   s.persistedAPIKey("embedding", settings.Embedding.APIKey),
		},
		LLM: tomlProvider{
			Provider: settings.LLM.Provider.String(),
			Model:    settings.LLM.Model,
			BaseURL:  settings.LLM.BaseURL,
			APIKey:   s.persistedAPIKey("llm", settings.LLM.APIKey),
		},
		Index: tomlIndex{
			Backend: settings.Index.Backend.String(),
			DataDir: settings.Index.DataDir,
		},
		Chunking: tomlChunking{
			ChunkSize: settings.Chunking.ChunkSize,
			Overlap:   settings.Chunking.Overlap,
		},
		Retrieval: tomlRetrieval{
			Strategy:      settings.Retrieval.Strategy.String(),
			K:             settings.Retrieval.K,
			FetchK:        settings.Retrieval.FetchK,
			MMRLambda:     settings.Retrieval.MMRLambda,
			QueryVariants: settings.Retrieval.QueryVariants,
		},
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	// Restricted permissions - the file may hold API keys.
	return os.WriteFile(s.filePath, data, 0600)
}

// Path returns the configuration file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}

// Exists reports whether the configuration file is present on disk.
func (s *SettingsStore) Exists() bool {
	_, err := os.Stat(s.filePath)
	return err == nil
}

// persistedAPIKey returns the key to write for a section: the file's
// existing value if the section already stores one, else empty.
func (s *SettingsStore) persistedAPIKey(section, key string) string {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return ""
	}
	var cfg tomlSettings
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return ""
	}

	var existing string
	switch section {
	case "embedding":
		existing = cfg.Embedding.APIKey
	case "llm":
		existing = cfg.LLM.APIKey
	}
	if existing == "" {
		return ""
	}
	return key
}

// applyFile copies non-empty file values over the defaults.
func applyFile(settings *domain.AppSettings, cfg tomlSettings) {
	if cfg.Embedding.Provider != "" {
		settings.Embedding.Provider = domain.AIProvider(cfg.Embedding.Provider)
	}
	if cfg.Embedding.Model != "" {
		settings.Embedding.Model = cfg.Embedding.Model
	}
	if cfg.Embedding.BaseURL != "" {
		settings.Embedding.BaseURL = cfg.Embedding.BaseURL
	}
	if cfg.Embedding.APIKey != "" {
		settings.Embedding.APIKey = cfg.Embedding.APIKey
	}

	if cfg.LLM.Provider != "" {
		settings.LLM.Provider = domain.AIProvider(cfg.LLM.Provider)
	}
	if cfg.LLM.Model != "" {
		settings.LLM.Model = cfg.LLM.Model
	}
	if cfg.LLM.BaseURL != "" {
		settings.LLM.BaseURL = cfg.LLM.BaseURL
	}
	if cfg.LLM.APIKey != "" {
		settings.LLM.APIKey = cfg.LLM.APIKey
	}

	if cfg.Index.Backend != "" {
		settings.Index.Backend = domain.IndexBackend(cfg.Index.Backend)
	}
	if cfg.Index.DataDir != "" {
		settings.Index.DataDir = cfg.Index.DataDir
	}

	if cfg.Chunking.ChunkSize > 0 {
		settings.Chunking.ChunkSize = cfg.Chunking.ChunkSize
	}
	if cfg.Chunking.Overlap > 0 {
		settings.Chunking.Overlap = cfg.Chunking.Overlap
	}

	if cfg.Retrieval.Strategy != "" {
		settings.Retrieval.Strategy = domain.Strategy(cfg.Retrieval.Strategy)
	}
	if cfg.Retrieval.K > 0 {
		settings.Retrieval.K = cfg.Retrieval.K
	}
	if cfg.Retrieval.FetchK > 0 {
		settings.Retrieval.FetchK = cfg.Retrieval.FetchK
	}
	if cfg.Retrieval.MMRLambda > 0 {
		settings.Retrieval.MMRLambda = cfg.Retrieval.MMRLambda
	}
	if cfg.Retrieval.QueryVariants > 0 {
		settings.Retrieval.QueryVariants = cfg.Retrieval.QueryVariants
	}
}

// applyEnvOverrides fills API keys from well-known environment variables
// when the file does not provide them. Keys in the file win so explicit
// configuration stays authoritative.
func applyEnvOverrides(settings *domain.AppSettings) {
	if settings.Embedding.APIKey == "" && settings.Embedding.Provider == domain.AIProviderOpenAI {
		settings.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if settings.LLM.APIKey == "" {
		switch settings.LLM.Provider {
		case domain.AIProviderOpenAI:
			settings.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case domain.AIProviderAnthropic:
			settings.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if dir := os.Getenv("KNOWGRID_DATA_DIR"); dir != "" {
		settings.Index.DataDir = dir
	}
}
