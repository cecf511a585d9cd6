// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML settings under ~/.sercha-rag/config.toml
//   - PromptStore: editable answer prompts under ~/.sercha-rag/prompts
package file
