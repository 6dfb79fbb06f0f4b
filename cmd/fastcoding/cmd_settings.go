package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"fastcoding/internal/config"
	"fastcoding/internal/llm"
)

var providerFlag string

// setAPIKeyCmd stores an API key in the settings store
var setAPIKeyCmd = &cobra.Command{
	Use:   "set-api-key [key]",
	Short: "Store the API key for a provider",
	Long: `Stores an API key in the persisted settings. Without an argument the key is
read from the terminal without echo, or from the first line of stdin.

Providers: openai, huggingface, gemini.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSetAPIKey,
}

// setModelCmd stores the model choice
var setModelCmd = &cobra.Command{
	Use:   "set-model <model>",
	Short: "Choose the model: GPT-4, StarCoder, CodeLlama or Gemini",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetModel,
}

// settingsCmd lists persisted settings
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "List persisted settings (API keys are masked)",
	RunE:  runSettings,
}

func registerSettingsFlags() {
	setAPIKeyCmd.Flags().StringVarP(&providerFlag, "provider", "p", string(llm.ProviderOpenAI), "Provider the key belongs to")
}

func runSetAPIKey(cmd *cobra.Command, args []string) error {
	settingKey, ok := llm.SettingKey(llm.Provider(strings.ToLower(providerFlag)))
	if !ok {
		return fmt.Errorf("unknown provider %q (valid: openai, huggingface, gemini)", providerFlag)
	}

	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		var err error
		if key, err = readSecret("API key: "); err != nil {
			return err
		}
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key must not be empty")
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.settings.Set(commandContext(cmd), settingKey, key); err != nil {
		return err
	}
	logger.Info("API key stored", zap.String("provider", providerFlag))
	fmt.Printf("API key saved for %s\n", strings.ToLower(providerFlag))
	return nil
}

func runSetModel(cmd *cobra.Command, args []string) error {
	model := strings.TrimSpace(args[0])
	if !config.IsValidModel(model) {
		return fmt.Errorf("unknown model %q (valid: %s)", model, strings.Join(config.ValidModels, ", "))
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.settings.Set(commandContext(cmd), llm.SettingModel, model); err != nil {
		return err
	}
	fmt.Printf("Model set to %s\n", model)
	return nil
}

func runSettings(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	all, err := a.settings.All(commandContext(cmd))
	if err != nil {
		return err
	}

	fmt.Printf("Settings store: %s\n", a.settings.Path())
	fmt.Printf("Active model:   %s\n", a.resolver.Model(commandContext(cmd)))
	if len(all) == 0 {
		fmt.Println("No settings stored.")
		return nil
	}
	for _, s := range all {
		value := s.Value
		if s.Key != llm.SettingModel {
			value = maskSecret(value)
		}
		fmt.Printf("  %-26s %s\n", s.Key, value)
	}
	return nil
}

// readSecret reads a line without echo on a terminal, or plainly from stdin.
func readSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read key: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read key: %w", err)
	}
	return line, nil
}

// maskSecret keeps the last four characters.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", 8) + s[len(s)-4:]
}
