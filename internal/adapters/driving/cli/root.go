// Package cli implements the voxqa command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/voxqa/internal/core/domain"
	"github.com/custodia-labs/voxqa/internal/core/ports/driving"
	"github.com/custodia-labs/voxqa/internal/logger"
)

// version is set by Execute.
var version = "dev"

// Services are injected by tests or opened on demand through Opener.
var (
	pipelineService driving.PipelineService
	settingsService driving.SettingsService
)

// Global flags.
var (
	verbose   bool
	configDir string
	dataDir   string
)

// Opener builds services once flags are parsed.
type Opener struct {
	// Settings opens the settings service for configDir.
	Settings func(configDir string) (driving.SettingsService, error)

	// Pipeline opens the pipeline. The returned func releases it.
	Pipeline func(ctx context.Context, configDir, dataDir string) (driving.PipelineService, func() error, error)
}

var (
	opener        Opener
	closePipeline func() error
)

var rootCmd = &cobra.Command{
	Use:   "voxqa",
	Short: "Ask questions about your documents",
	Long: `voxqa answers questions from documents you ingest.

Documents are split into overlapping chunks, embedded and kept in a local
vector index. A question retrieves the closest chunks and an LLM answers
from them alone.

  voxqa ingest handbook.pdf
  voxqa ask "How many vacation days do I get?"`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return releasePipeline()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline stages to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.voxqa)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "index directory (default <config-dir>/index)")
}

// Execute runs the root command.
func Execute(ctx context.Context, v string, o Opener) error {
	version = v
	opener = o
	defer logger.Sync()

	rootCmd.SetOut(os.Stdout)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		if cerr := releasePipeline(); cerr != nil {
			logger.Warn("closing pipeline: %v", cerr)
		}
	}
	return err
}

// requirePipeline returns the injected pipeline or opens one.
func requirePipeline(cmd *cobra.Command) (driving.PipelineService, error) {
	if pipelineService != nil {
		return pipelineService, nil
	}
	if opener.Pipeline == nil {
		return nil, errors.New("pipeline not configured")
	}

	svc, closeFn, err := opener.Pipeline(cmd.Context(), configDir, dataDir)
	if err != nil {
		return nil, err
	}
	pipelineService = svc
	closePipeline = closeFn
	return svc, nil
}

func releasePipeline() error {
	if closePipeline == nil {
		return nil
	}
	closeFn := closePipeline
	closePipeline = nil
	pipelineService = nil
	return closeFn()
}

// requireSettings returns the injected settings service or opens one.
func requireSettings() (driving.SettingsService, error) {
	if settingsService != nil {
		return settingsService, nil
	}
	if opener.Settings == nil {
		return nil, errors.New("settings service not configured")
	}

	svc, err := opener.Settings(configDir)
	if err != nil {
		return nil, err
	}
	settingsService = svc
	return svc, nil
}

// hint adds a next step to errors a user can fix.
func hint(err error) error {
	switch {
	case errors.Is(err, domain.ErrIndexNotReady):
		return fmt.Errorf("%w\nRun 'voxqa ingest <file>' first", err)
	case errors.Is(err, domain.ErrNotReady):
		return fmt.Errorf("%w\nConfigure an LLM with 'voxqa settings llm'", err)
	case errors.Is(err, domain.ErrConfiguration):
		return fmt.Errorf("%w\nRun 'voxqa settings show' to review the configuration", err)
	default:
		return err
	}
}
