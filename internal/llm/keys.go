package llm

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Provider names a credential owner.
type Provider string

const (
	ProviderOpenAI      Provider = "openai"
	ProviderHuggingFace Provider = "huggingface"
	ProviderGemini      Provider = "gemini"
)

// Persisted setting names.
const (
	SettingOpenAIKey = "fastCoding.apiKey"
	SettingHFKey     = "fastCoding.hfApiKey"
	SettingGeminiKey = "fastCoding.geminiApiKey"
	SettingModel     = "fastCoding.model"
)

var envVars = map[Provider]string{
	ProviderOpenAI:      "OPENAI_API_KEY",
	ProviderHuggingFace: "HF_API_KEY",
	ProviderGemini:      "GEMINI_API_KEY",
}

var settingKeys = map[Provider]string{
	ProviderOpenAI:      SettingOpenAIKey,
	ProviderHuggingFace: SettingHFKey,
	ProviderGemini:      SettingGeminiKey,
}

// SettingKey returns the persisted setting name for p.
func SettingKey(p Provider) (string, bool) {
	k, ok := settingKeys[p]
	return k, ok
}

// KeyProvider looks up an API key. An empty string with a nil error means
// the key is not configured.
type KeyProvider interface {
	APIKey(ctx context.Context, p Provider) (string, error)
}

// SettingsReader is the read side of the settings store.
type SettingsReader interface {
	Get(ctx context.Context, key string) (string, bool, error)
}

// EnvKeyProvider reads keys from the process environment, falling back to
// values from a dotenv file. The file is read once and never exported into
// the process environment.
type EnvKeyProvider struct {
	file map[string]string
}

// NewEnvKeyProvider loads envFile if it exists. An empty path skips it.
func NewEnvKeyProvider(envFile string) (*EnvKeyProvider, error) {
	p := &EnvKeyProvider{file: map[string]string{}}
	if envFile == "" {
		return p, nil
	}
	values, err := godotenv.Read(envFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return p, nil
		}
		return nil, fmt.Errorf("failed to read env file %s: %w", envFile, err)
	}
	p.file = values
	return p, nil
}

// APIKey implements KeyProvider.
func (e *EnvKeyProvider) APIKey(_ context.Context, p Provider) (string, error) {
	name, ok := envVars[p]
	if !ok {
		return "", fmt.Errorf("unknown provider %q", p)
	}
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v, nil
	}
	return strings.TrimSpace(e.file[name]), nil
}

// StoreKeyProvider reads keys persisted by setApiKey.
type StoreKeyProvider struct {
	settings SettingsReader
}

// NewStoreKeyProvider wraps a settings reader.
func NewStoreKeyProvider(settings SettingsReader) *StoreKeyProvider {
	return &StoreKeyProvider{settings: settings}
}

// APIKey implements KeyProvider.
func (s *StoreKeyProvider) APIKey(ctx context.Context, p Provider) (string, error) {
	key, ok := settingKeys[p]
	if !ok {
		return "", fmt.Errorf("unknown provider %q", p)
	}
	v, _, err := s.settings.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return strings.TrimSpace(v), nil
}

// ChainKeyProvider returns the first non-empty key.
type ChainKeyProvider []KeyProvider

// APIKey implements KeyProvider.
func (c ChainKeyProvider) APIKey(ctx context.Context, p Provider) (string, error) {
	for _, kp := range c {
		v, err := kp.APIKey(ctx, p)
		if err != nil {
			return "", err
		}
		if v != "" {
			return v, nil
		}
	}
	return "", nil
}
