// Package app wires the adapters into a pipeline session.
package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/voxqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/voxqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/voxqa/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/voxqa/internal/core/services"
	"github.com/custodia-labs/voxqa/internal/logger"
	"github.com/custodia-labs/voxqa/internal/normalisers"
	"github.com/custodia-labs/voxqa/internal/postprocessors"
)

// Options locates configuration and the persisted index.
type Options struct {
	// ConfigDir holds config.toml and prompts/ (default: ~/.voxqa).
	ConfigDir string

	// DataDir holds the persisted index (default: <ConfigDir>/index).
	DataDir string

	// Validate pings the AI providers before use.
	Validate bool
}

// resolve fills in default directories.
func (o Options) resolve() (Options, error) {
	if o.ConfigDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return o, err
		}
		o.ConfigDir = dir
	}
	if o.DataDir == "" {
		o.DataDir = filepath.Join(o.ConfigDir, "index")
	}
	return o, nil
}

// App is an opened pipeline with its settings.
type App struct {
	Settings *services.SettingsService
	Session  *services.Session
	// Warnings are non-fatal issues found while opening, e.g. an unreachable LLM.
	Warnings []string
	DataDir  string
}

// OpenSettings opens the settings service backed by <configDir>/config.toml.
func OpenSettings(configDir string) (*services.SettingsService, error) {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	return services.NewSettingsService(store, ai.NewConfigValidator()), nil
}

// Open builds the session from the stored settings. A persisted index in
// DataDir is loaded without re-embedding; otherwise the index starts empty.
func Open(ctx context.Context, opts Options) (*App, error) {
	opts, err := opts.resolve()
	if err != nil {
		return nil, err
	}

	settingsSvc, err := OpenSettings(opts.ConfigDir)
	if err != nil {
		return nil, err
	}
	settings, err := settingsSvc.Effective()
	if err != nil {
		return nil, err
	}

	result, err := ai.Init(ctx, *settings, opts.Validate)
	if err != nil {
		return nil, err
	}

	index := flat.New()
	if flat.Exists(opts.DataDir) {
		index, err = flat.Load(ctx, opts.DataDir)
		if err != nil {
			_ = result.Close()
			return nil, err
		}
		logger.Debug("Loaded index from %s (%d entries)", opts.DataDir, index.Len())
	}

	prompts, err := file.NewPromptStore(filepath.Join(opts.ConfigDir, "prompts"))
	if err != nil {
		_ = result.Close()
		return nil, err
	}

	sessionOpts := []services.SessionOption{
		services.WithConfig(settings.Pipeline),
		services.WithLocation(opts.DataDir),
		services.WithPrompts(prompts),
	}
	if result.LLMService != nil {
		sessionOpts = append(sessionOpts, services.WithGenerator(result.LLMService))
	}

	session, err := services.NewSession(
		index,
		result.EmbeddingService,
		normalisers.NewDefaultRegistry(),
		postprocessors.NewDefaultFactory(),
		sessionOpts...,
	)
	if err != nil {
		_ = result.Close()
		return nil, err
	}

	return &App{
		Settings: settingsSvc,
		Session:  session,
		Warnings: result.Warnings,
		DataDir:  opts.DataDir,
	}, nil
}

// Close releases the session and its services.
func (a *App) Close() error {
	return a.Session.Close()
}
