// Command voxqa answers questions from ingested documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/voxqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/voxqa/internal/app"
	"github.com/custodia-labs/voxqa/internal/core/ports/driving"
	"github.com/custodia-labs/voxqa/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// API keys may live in .env next to the working directory.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: reading .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, version, cli.Opener{
		Settings: func(configDir string) (driving.SettingsService, error) {
			return app.OpenSettings(configDir)
		},
		Pipeline: openPipeline,
	})
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func openPipeline(ctx context.Context, configDir, dataDir string) (driving.PipelineService, func() error, error) {
	a, err := app.Open(ctx, app.Options{
		ConfigDir: configDir,
		DataDir:   dataDir,
		Validate:  true,
	})
	if err != nil {
		return nil, nil, err
	}
	for _, w := range a.Warnings {
		logger.Warn("%s", w)
	}
	return a.Session, a.Close, nil
}
