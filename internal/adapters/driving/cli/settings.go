package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/voxqa/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change chunking, retrieval and generation parameters and the
embedding and LLM providers.

Settings are stored in config.toml inside the config directory.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a single setting",
	Long: `Change a single setting. Pipeline values are validated together, so an
overlap larger than the chunk size is rejected.

Run 'voxqa settings keys' for the list of keys.`,
	Example: `  voxqa settings set retrieval.k 8
  voxqa settings set generation.temperature 0.2
  voxqa settings set llm.provider ollama`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the keys accepted by 'settings set'",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsAPIKeyCmd = &cobra.Command{
	Use:       "api-key <embedding|llm>",
	Short:     "Store the API key for a provider",
	Long:      `Prompts for an API key without echoing it and stores it for the embedding or LLM provider.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(domain.TargetEmbedding), string(domain.TargetLLM)},
	RunE:      runSettingsAPIKey,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Choose the provider used to embed chunks and questions.

Changing the embedding model invalidates an existing index: run 'voxqa clear'
and ingest again.`,
	Args: cobra.NoArgs,
	RunE: runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Choose the provider that generates answers.`,
	Args:  cobra.NoArgs,
	RunE:  runSettingsLLM,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsAPIKeyCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}

	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	p := settings.Pipeline
	cmd.Println(style.Title.Render("Pipeline"))
	cmd.Printf("  Chunk size:        %d\n", p.ChunkSize)
	cmd.Printf("  Chunk overlap:     %d\n", p.ChunkOverlap)
	cmd.Printf("  Top k:             %d\n", p.K)
	cmd.Printf("  Temperature:       %g\n", p.Temperature)
	cmd.Printf("  Max output:        %d\n", p.MaxOutputLength)
	cmd.Printf("  Embed batch size:  %d\n", p.EmbedBatchSize)
	cmd.Printf("  Embed concurrency: %d\n", p.EmbedConcurrency)
	cmd.Printf("  Embed timeout:     %s\n", p.EmbedTimeout)
	cmd.Printf("  Generate timeout:  %s\n", p.GenerateTimeout)
	cmd.Println()

	e := settings.Embedding
	cmd.Println(style.Title.Render("Embedding"))
	printProvider(cmd, e.Provider, e.Model, e.BaseURL, e.APIKey, e.IsConfigured())
	cmd.Println()

	l := settings.LLM
	cmd.Println(style.Title.Render("LLM"))
	if l.Provider == "" {
		cmd.Printf("  Provider: %s\n", style.Muted.Render("(none)"))
	} else {
		printProvider(cmd, l.Provider, l.Model, l.BaseURL, l.APIKey, l.IsConfigured())
	}
	cmd.Println()

	if err := svc.Validate(); err != nil {
		cmd.Println(style.Warning.Render(fmt.Sprintf("Warning: %v", err)))
		cmd.Println("Run 'voxqa settings embedding' or 'voxqa settings llm' to fix it.")
	} else {
		cmd.Println(style.Success.Render("Configuration is valid."))
	}
	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model:    %s\n", model)
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key:  %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key:  %s\n", style.Muted.Render("(not set)"))
		}
	}
	status := style.Success.Render("configured")
	if !configured {
		status = style.Warning.Render("not configured")
	}
	cmd.Printf("  Status:   %s\n", status)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	if err := svc.SetValue(key, value); err != nil {
		return err
	}
	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}
	for _, k := range svc.Keys() {
		cmd.Println(k)
	}
	return nil
}

func runSettingsAPIKey(cmd *cobra.Command, args []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}

	target := domain.SettingsTarget(args[0])
	if target != domain.TargetEmbedding && target != domain.TargetLLM {
		return fmt.Errorf("%w: target must be embedding or llm, got %q", domain.ErrInvalidInput, args[0])
	}

	cmd.Print("Enter API key: ")
	apiKey := readPassword(cmd.InOrStdin())
	cmd.Println()
	if apiKey == "" {
		return errors.New("API key must not be empty")
	}

	if err := svc.SetAPIKey(target, apiKey); err != nil {
		return err
	}
	cmd.Printf("API key stored for %s: %s\n", target, maskAPIKey(apiKey))
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}
	return configureProvider(cmd, bufio.NewReader(cmd.InOrStdin()), providerPrompt{
		title:     "Select Embedding Provider",
		providers: domain.AllEmbeddingProviders(),
		models:    domain.DefaultEmbeddingModels(),
		set:       svc.SetEmbeddingProvider,
		validate:  svc.ValidateEmbeddingConfig,
	})
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}
	return configureProvider(cmd, bufio.NewReader(cmd.InOrStdin()), providerPrompt{
		title:     "Select LLM Provider",
		providers: domain.AllLLMProviders(),
		models:    domain.DefaultLLMModels(),
		set:       svc.SetLLMProvider,
		validate:  svc.ValidateLLMConfig,
	})
}

// providerPrompt describes one interactive provider selection.
type providerPrompt struct {
	title     string
	providers []domain.AIProvider
	models    map[domain.AIProvider]string
	set       func(domain.AIProvider, string, string) error
	validate  func() error
}

func configureProvider(cmd *cobra.Command, reader *bufio.Reader, p providerPrompt) error {
	cmd.Println(style.Title.Render(p.title))
	for i, provider := range p.providers {
		cmd.Printf("  %d. %s\n", i+1, provider.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(p.providers), 1)
	selected := p.providers[idx-1]

	defaultModel := p.models[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key (empty to use the environment): ")
		apiKey = readPasswordFrom(cmd.InOrStdin(), reader)
		cmd.Println()
	}

	if err := p.set(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure %s: %w", selected, err)
	}

	cmd.Print("Validating configuration... ")
	if err := p.validate(); err != nil {
		cmd.Println(style.Error.Render("FAILED"))
		return fmt.Errorf("%s configuration validation failed: %w", selected, err)
	}
	cmd.Println(style.Success.Render("OK"))

	cmd.Printf("Configured %s (%s)\n", selected.Description(), model)
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads a secret without echo when in is an interactive terminal.
func readPassword(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if password, err := term.ReadPassword(int(f.Fd())); err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(bufio.NewReader(in))
}

// readPasswordFrom is readPassword for a prompt that already buffers in.
func readPasswordFrom(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && reader.Buffered() == 0 && term.IsTerminal(int(f.Fd())) {
		if password, err := term.ReadPassword(int(f.Fd())); err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
