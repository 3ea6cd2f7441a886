package domain

const unknownDescription = "Unknown"

// Strategy selects how retrieval ranks and diversifies results.
// Strategies are a closed enumeration dispatched by a single switch,
// not an open-ended plugin hierarchy.
type Strategy string

// Available retrieval strategies.
const (
	// StrategySimilarity ranks purely by cosine similarity.
	StrategySimilarity Strategy = "similarity"

	// StrategyMMR re-ranks an over-fetched pool with maximum marginal
	// relevance to suppress near-duplicate chunks.
	StrategyMMR Strategy = "mmr"

	// StrategyMultiQuery expands the query into paraphrases and merges
	// the per-variant similarity results to improve recall.
	StrategyMultiQuery Strategy = "multi_query"
)

// IsValid returns true if the strategy is recognised.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategySimilarity, StrategyMMR, StrategyMultiQuery:
		return true
	default:
		return false
	}
}

// RequiresLLM returns true if this strategy needs a generative model.
func (s Strategy) RequiresLLM() bool {
	return s == StrategyMultiQuery
}

// String returns the string representation.
func (s Strategy) String() string {
	return string(s)
}

// Description returns a human-readable description of the strategy.
func (s Strategy) Description() string {
	switch s {
	case StrategySimilarity:
		return "Similarity (cosine top-k)"
	case StrategyMMR:
		return "MMR (relevance vs redundancy re-ranking)"
	case StrategyMultiQuery:
		return "Multi-Query (paraphrase expansion)"
	default:
		return unknownDescription
	}
}
