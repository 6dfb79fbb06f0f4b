package main

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"fastcoding/internal/assist"
	"fastcoding/internal/config"
	"fastcoding/internal/llm"
	"fastcoding/internal/logging"
	"fastcoding/internal/prompt"
	"fastcoding/internal/store"
	"fastcoding/internal/usage"
)

// app bundles the components every command needs.
type app struct {
	cfg       *config.Config
	settings  *store.SettingsStore
	resolver  *llm.Resolver
	assistant *assist.Assistant
	usage     *usage.Tracker
}

// openApp loads the config and wires the settings store, credentials,
// backend resolver and assistant.
func openApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	if err := logging.Initialize(cfg.Logging.Dir, cfg.Logging.ToLogging()); err != nil {
		logger.Warn("Failed to initialize file logging", zap.Error(err))
	}
	logging.Boot("Config loaded from %s (model=%s, credentials=%s)", configPath, cfg.Model, cfg.Credentials.Source)
	if logging.IsDebugMode() {
		logger.Debug("Category logs enabled", zap.String("dir", cfg.Logging.Dir))
	}

	settings, err := store.NewSettingsStore(cfg.Store.Path)
	if err != nil {
		logging.BootError("Settings store %s: %v", cfg.Store.Path, err)
		return nil, err
	}

	keys, err := llm.NewKeyProvider(cfg.Credentials, settings)
	if err != nil {
		logging.BootError("Credentials source %s: %v", cfg.Credentials.Source, err)
		settings.Close()
		return nil, err
	}

	prompts, err := prompt.Default()
	if err != nil {
		logging.BootError("Prompt templates: %v", err)
		settings.Close()
		return nil, err
	}

	opts := assist.Options{
		ContextLines:         cfg.Assist.ContextLines,
		CompletionLinesAfter: cfg.Assist.CompletionLinesAfter,
		Strict:               cfg.Assist.Strict,
	}
	usageDir := filepath.Dir(cfg.Store.Path)
	if cfg.Store.Path == ":memory:" {
		usageDir = config.DefaultDir()
	}
	tracker, err := usage.NewTracker(filepath.Join(usageDir, "usage.json"))
	if err != nil {
		logger.Warn("Usage tracking disabled", zap.Error(err))
	} else {
		opts.Usage = tracker
		logging.BootDebug("Usage totals at %s", tracker.Path())
	}

	resolver := llm.NewResolver(cfg, keys, settings)
	assistant := assist.New(resolver, prompts, opts)

	logger.Debug("Components wired",
		zap.String("store", settings.Path()),
		zap.String("config", configPath))

	return &app{cfg: cfg, settings: settings, resolver: resolver, assistant: assistant, usage: tracker}, nil
}

// Close saves usage totals and releases the settings store.
func (a *app) Close() {
	if a.usage != nil {
		if err := a.usage.Save(); err != nil {
			logger.Warn("Failed to save usage", zap.Error(err))
		}
	}
	if err := a.settings.Close(); err != nil {
		logger.Warn("Failed to close settings store", zap.Error(err))
	}
}
