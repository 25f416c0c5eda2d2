package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/voxqa/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// defaultPrompts are written to the prompt directory on first use and
// returned when a file is missing.
var defaultPrompts = map[string]string{
	driven.PromptAnswer: driven.DefaultAnswerPrompt,
}

const promptReadme = `# voxqa prompts

Templates used when generating answers. Edit a file to change the wording;
changes apply to the next command.

answer.txt must contain exactly two %s placeholders: the retrieved context
first, then the question. A template with a different count is ignored and
the built-in one is used.
`

// PromptStore serves prompt templates from <dir>/<name>.txt.
// The directory is seeded with the defaults on first Load, not in the constructor.
type PromptStore struct {
	mu        sync.Mutex
	promptDir string
	cache     map[string]string
	seeded    bool
}

// NewPromptStore creates a prompt store rooted at promptDir.
// If promptDir is empty, defaults to ~/.voxqa/prompts.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the template called name.
// A missing or unreadable file falls back to the built-in template; unknown
// names without a file are an error.
func (s *PromptStore) Load(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seeded {
		s.seeded = true
		if err := s.seed(); err != nil {
			// Read-only home directories still get the built-in prompts
			if prompt, ok := defaultPrompts[name]; ok {
				return prompt, nil
			}
			return "", err
		}
	}

	if prompt, ok := s.cache[name]; ok {
		return prompt, nil
	}

	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	prompt := strings.TrimSpace(string(data))
	s.cache[name] = prompt
	return prompt, nil
}

// Reload drops cached templates so the next Load reads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// seed creates the directory and writes any missing default files.
func (s *PromptStore) seed() error {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}

	files := map[string]string{"README.md": promptReadme}
	for name, content := range defaultPrompts {
		files[name+".txt"] = content
	}

	for name, content := range files {
		path := filepath.Join(s.promptDir, name)
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}
