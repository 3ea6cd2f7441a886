// Package llm provides shared pieces for the LLM service adapters.
package llm

import (
	"strings"
)

// DefaultExpandQueryPrompt is the fallback paraphrase template when no
// PromptStore is configured. Takes the variant count and the query.
const DefaultExpandQueryPrompt = `Generate %d alternative phrasings of the following search query.
Keep the original intent. Return one phrasing per line, nothing else.

Query: %s

Phrasings:`

// Generation parameters for query expansion. Some temperature keeps
// the phrasings from collapsing into near-copies of the query.
const (
	ExpandMaxTokens   = 256
	ExpandTemperature = 0.7
)

// ParseVariants extracts query phrasings from a model response: one
// per line, with list markers and quotes stripped, capped at n.
func ParseVariants(response string, n int) []string {
	var variants []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789.) ")
		line = strings.Trim(line, `"'`)
		if line == "" {
			continue
		}
		variants = append(variants, line)
		if len(variants) == n {
			break
		}
	}
	return variants
}
