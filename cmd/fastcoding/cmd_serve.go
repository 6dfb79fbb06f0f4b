package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fastcoding/internal/bridge"
	"fastcoding/internal/config"
	"fastcoding/internal/logging"
	"fastcoding/internal/typing"
)

var watchConfig bool

// serveCmd runs the editor bridge on stdio
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve editor requests over stdin/stdout",
	Long: `Runs the editor bridge: one JSON request per line on stdin, one response or
notification per line on stdout. Logs go to stderr and the log directory.

The config file is watched and reloaded while serving.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func registerServeFlags() {
	serveCmd.Flags().BoolVar(&watchConfig, "watch", true, "Reload the config file when it changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext(commandContext(cmd))
	defer cancel()

	if watchConfig {
		w, err := config.NewWatcher(configPath, func(cfg *config.Config) {
			a.resolver.UpdateConfig(cfg)
			logging.Configure(cfg.Logging.ToLogging())
			logger.Info("Config reloaded", zap.String("model", cfg.Model))
		})
		if err != nil {
			logger.Warn("Config watcher unavailable", zap.Error(err))
		} else if err := w.Start(ctx); err != nil {
			logger.Warn("Config watcher not started", zap.Error(err))
		} else {
			defer w.Stop()
		}
	}

	detector := typing.NewDetector(a.cfg.Typing.BufferSize, a.cfg.Typing.TriggerWords)
	server := bridge.NewServer(a.assistant, a.settings, detector, os.Stdin, os.Stdout)

	logger.Info("Bridge serving on stdio", zap.String("store", a.settings.Path()))
	if err := server.Serve(ctx); err != nil {
		logger.Error("Bridge stopped", zap.Error(err))
		return err
	}
	logger.Info("Bridge stopped")
	return nil
}
