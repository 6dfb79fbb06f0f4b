// Package main implements the fastcoding CLI: the editor bridge server plus
// terminal versions of every assistant feature.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fastcoding/internal/config"
	"fastcoding/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Logger instance
	logger *zap.Logger

	version = "dev"
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "fastcoding",
	Short: "fastcoding - LLM code generation, review and completion",
	Long: `fastcoding turns comments into code, reviews and documents selections,
completes code inline and answers coding questions.

Run 'fastcoding serve' to drive it from an editor over stdio, or use the
feature commands directly on files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		}

		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

// versionCmd prints the build version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the fastcoding version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fastcoding version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "Path to config file")

	registerFeatureFlags()
	registerSettingsFlags()
	registerServeFlags()
	registerEvalFlags()
	registerUsageFlags()

	rootCmd.AddCommand(
		generateCmd,
		reviewCmd,
		documentCmd,
		completeCmd,
		chatCmd,
		setAPIKeyCmd,
		setModelCmd,
		settingsCmd,
		usageCmd,
		serveCmd,
		evalCmd,
		versionCmd,
	)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			if logger != nil {
				logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
			}
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
