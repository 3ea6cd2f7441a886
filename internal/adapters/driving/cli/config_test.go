package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/knowgrid/knowgrid/internal/core/domain"
)

func TestDescribeProvider(t *testing.T) {
	tests := []struct {
		name       string
		provider   domain.AIProvider
		model      string
		configured bool
		want       string
	}{
		{
			name: "unset provider",
			want: "not configured",
		},
		{
			name:       "configured with model",
			provider:   domain.AIProviderOllama,
			model:      "llama3.2",
			configured: true,
			want:       "ollama/llama3.2 (configured)",
		},
		{
			name:     "cloud provider without key",
			provider: domain.AIProviderOpenAI,
			model:    "gpt-4o-mini",
			want:     "openai/gpt-4o-mini (missing API key)",
		},
		{
			name:       "configured without model",
			provider:   domain.AIProviderAnthropic,
			configured: true,
			want:       "anthropic (configured)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := describeProvider(tt.provider, tt.model, tt.configured)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigCmd_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range configCmd.Commands() {
		names[c.Name()] = true
	}

	assert.True(t, names["init"])
	assert.True(t, names["show"])
	assert.True(t, names["validate"])
}
