// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML configuration at ~/.voxqa/config.toml
//   - PromptStore: user-editable prompt templates in ~/.voxqa/prompts
package file
