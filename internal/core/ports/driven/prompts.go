package driven

// Prompt names used by services to load LLM prompt templates.
const (
	// PromptAnswer is the grounded answer-synthesis template.
	// Takes context block and question as fmt arguments.
	PromptAnswer = "answer"

	// PromptExpandQuery is the paraphrase-expansion template.
	// Takes the variant count and the original query as fmt arguments.
	PromptExpandQuery = "expand_query"
)

// PromptStore loads prompt templates by name.
// Implementations may read user-editable files with embedded defaults.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)
}
