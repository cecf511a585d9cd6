package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from user-editable files or embed them.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return an error.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptSystem is the system message for answer generation.
	// It has no format placeholders.
	PromptSystem = "system"

	// PromptAnswer is the grounded answer template.
	// It expects %[1]s (question) and %[2]s (sources) placeholders.
	PromptAnswer = "answer"
)
