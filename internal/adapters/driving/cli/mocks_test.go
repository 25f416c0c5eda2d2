package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/voxqa/internal/core/domain"
)

// mockPipeline is a mock implementation of driving.PipelineService.
type mockPipeline struct {
	chunks   int
	answer   *domain.Answer
	status   domain.Status
	err      error
	queryErr error

	ingested  []domain.RawDocument
	lastOpts  domain.IngestOptions
	questions []string
	lastQuery domain.QueryOptions
	cleared   bool
}

func (m *mockPipeline) Ingest(_ context.Context, raw domain.RawDocument, opts domain.IngestOptions) (int, error) {
	m.ingested = append(m.ingested, raw)
	m.lastOpts = opts
	return m.chunks, m.err
}

func (m *mockPipeline) Query(_ context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error) {
	m.questions = append(m.questions, question)
	m.lastQuery = opts
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.answer, nil
}

func (m *mockPipeline) Clear(_ context.Context) error {
	m.cleared = m.err == nil
	return m.err
}

func (m *mockPipeline) Status(_ context.Context) (domain.Status, error) {
	return m.status, m.err
}

func (m *mockPipeline) Defaults() domain.PipelineConfig {
	return domain.DefaultPipelineConfig()
}

// mockSettings is a mock implementation of driving.SettingsService.
type mockSettings struct {
	settings    domain.AppSettings
	err         error
	validateErr error

	values    map[string]string
	apiKeys   map[domain.SettingsTarget]string
	embedding domain.EmbeddingSettings
	llm       domain.LLMSettings
}

func newMockSettings() *mockSettings {
	return &mockSettings{
		settings: domain.DefaultAppSettings(),
		values:   map[string]string{},
		apiKeys:  map[domain.SettingsTarget]string{},
	}
}

func (m *mockSettings) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, m.err
}

func (m *mockSettings) Effective() (*domain.AppSettings, error) { return m.Get() }

func (m *mockSettings) Save(s *domain.AppSettings) error {
	m.settings = *s
	return m.err
}

func (m *mockSettings) SetPipeline(cfg domain.PipelineConfig) error {
	m.settings.Pipeline = cfg
	return m.err
}

func (m *mockSettings) SetValue(key, value string) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func (m *mockSettings) Keys() []string {
	return []string{"chunking.size", "retrieval.k"}
}

func (m *mockSettings) SetAPIKey(target domain.SettingsTarget, apiKey string) error {
	m.apiKeys[target] = apiKey
	return m.err
}

func (m *mockSettings) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.embedding = domain.EmbeddingSettings{Provider: provider, Model: model, APIKey: apiKey}
	return m.err
}

func (m *mockSettings) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.llm = domain.LLMSettings{Provider: provider, Model: model, APIKey: apiKey}
	return m.err
}

func (m *mockSettings) Validate() error                 { return m.validateErr }
func (m *mockSettings) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettings) ValidateEmbeddingConfig() error  { return m.validateErr }
func (m *mockSettings) ValidateLLMConfig() error        { return m.validateErr }

// setupTestServices injects mocks and restores the globals afterwards.
func setupTestServices(t *testing.T) (*mockPipeline, *mockSettings) {
	t.Helper()
	p := &mockPipeline{}
	s := newMockSettings()
	pipelineService = p
	settingsService = s
	t.Cleanup(func() {
		pipelineService = nil
		settingsService = nil
	})
	return p, s
}

// run executes the root command with args and stdin, returning combined output.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// resetFlags restores every flag to its default so Changed is accurate per run.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue) //nolint:errcheck // defaults always parse
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
