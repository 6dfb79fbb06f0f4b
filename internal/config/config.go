package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all fastcoding configuration.
type Config struct {
	// Model is the user-facing model choice: GPT-4, StarCoder, CodeLlama or Gemini.
	// A value persisted in the settings store wins over this one.
	Model string `yaml:"model"`

	LLM         LLMConfig         `yaml:"llm"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Store       StoreConfig       `yaml:"store"`
	Assist      AssistConfig      `yaml:"assist"`
	Typing      TypingConfig      `yaml:"typing"`
	Eval        EvalConfig        `yaml:"eval"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// CredentialsConfig selects where API keys come from.
type CredentialsConfig struct {
	Source  string `yaml:"source"`   // env, store, chain
	EnvFile string `yaml:"env_file"` // optional .env file seeding the process environment
}

// StoreConfig configures the persisted settings store.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// AssistConfig configures how much surrounding text each feature sends.
type AssistConfig struct {
	// ContextLines is the number of lines above and below the cursor sent with code generation.
	ContextLines int `yaml:"context_lines"`

	// CompletionLinesAfter is the number of lines after the cursor sent with inline completion.
	CompletionLinesAfter int `yaml:"completion_lines_after"`

	// Strict adds the precision instructions to every system prompt.
	Strict bool `yaml:"strict"`

	// ChatStyle is the glamour style for the terminal chat; "auto" follows the terminal.
	ChatStyle string `yaml:"chat_style"`
}

// TypingConfig configures the typed-character trigger detector.
type TypingConfig struct {
	BufferSize   int      `yaml:"buffer_size"`
	TriggerWords []string `yaml:"trigger_words"`
}

// EvalConfig configures the evaluation harness.
type EvalConfig struct {
	Python      string `yaml:"python"`
	Limit       int    `yaml:"limit"`
	Concurrency int    `yaml:"concurrency"`
	Timeout     string `yaml:"timeout"` // per test run
}

// Model names accepted in the model setting.
const (
	ModelGPT4      = "GPT-4"
	ModelStarCoder = "StarCoder"
	ModelCodeLlama = "CodeLlama"
	ModelGemini    = "Gemini"
)

// ValidModels lists every model choice.
var ValidModels = []string{ModelGPT4, ModelStarCoder, ModelCodeLlama, ModelGemini}

// ValidCredentialSources lists every credential source.
var ValidCredentialSources = []string{"env", "store", "chain"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	python := "python3"
	if runtime.GOOS == "windows" {
		python = "python"
	}

	return &Config{
		Model: ModelGPT4,

		LLM: DefaultLLMConfig(),

		Credentials: CredentialsConfig{
			Source:  "chain",
			EnvFile: ".env",
		},

		Store: StoreConfig{
			Path: filepath.Join(DefaultDir(), "settings.db"),
		},

		Assist: AssistConfig{
			ContextLines:         5,
			CompletionLinesAfter: 10,
			Strict:               true,
			ChatStyle:            "auto",
		},

		Typing: TypingConfig{
			BufferSize:   50,
			TriggerWords: []string{"def", "function", "class", "public", "private"},
		},

		Eval: EvalConfig{
			Python:      python,
			Limit:       10,
			Concurrency: 1,
			Timeout:     "30s",
		},

		Logging: LoggingConfig{
			Level:     "info",
			DebugMode: false,
			Dir:       filepath.Join(DefaultDir(), "logs"),
		},
	}
}

// DefaultDir returns the per-user fastcoding directory.
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "fastcoding")
	}
	return ".fastcoding"
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults with environment overrides applied.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if model := os.Getenv("FASTCODING_MODEL"); model != "" {
		c.Model = model
	}
	if source := os.Getenv("FASTCODING_CREDENTIALS"); source != "" {
		c.Credentials.Source = strings.ToLower(source)
	}
	if path := os.Getenv("FASTCODING_STORE"); path != "" {
		c.Store.Path = path
	}
	if url := os.Getenv("OPENAI_BASE_URL"); url != "" {
		c.LLM.OpenAI.BaseURL = url
	}
	if url := os.Getenv("HF_BASE_URL"); url != "" {
		c.LLM.HuggingFace.BaseURL = url
	}
	if os.Getenv("FASTCODING_DEBUG") == "1" {
		c.Logging.DebugMode = true
		c.Logging.Level = "debug"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !contains(ValidModels, c.Model) {
		return fmt.Errorf("invalid model: %s (valid: %v)", c.Model, ValidModels)
	}
	if !contains(ValidCredentialSources, c.Credentials.Source) {
		return fmt.Errorf("invalid credentials source: %s (valid: %v)", c.Credentials.Source, ValidCredentialSources)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store path not configured")
	}
	if c.Assist.ContextLines < 0 || c.Assist.CompletionLinesAfter < 0 {
		return fmt.Errorf("assist line counts must not be negative")
	}
	if c.Typing.BufferSize <= 0 {
		return fmt.Errorf("typing buffer size must be positive, got %d", c.Typing.BufferSize)
	}
	if c.Eval.Concurrency < 1 {
		return fmt.Errorf("eval concurrency must be at least 1, got %d", c.Eval.Concurrency)
	}
	return nil
}

// IsValidModel reports whether name is one of the known model choices.
func IsValidModel(name string) bool {
	return contains(ValidModels, name)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
