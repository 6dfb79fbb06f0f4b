package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"fastcoding/internal/config"
	"fastcoding/internal/logging"
)

// Resolver builds the backend for the model selected at call time. The
// persisted model setting wins over the configured model.
type Resolver struct {
	mu       sync.RWMutex
	cfg      *config.Config
	keys     KeyProvider
	settings SettingsReader // optional
}

// NewResolver creates a resolver. settings may be nil.
func NewResolver(cfg *config.Config, keys KeyProvider, settings SettingsReader) *Resolver {
	return &Resolver{cfg: cfg, keys: keys, settings: settings}
}

// UpdateConfig swaps the configuration used by later calls.
func (r *Resolver) UpdateConfig(cfg *config.Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg = cfg
}

func (r *Resolver) config() *config.Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg
}

// Model returns the canonical model name in effect. Unknown names fall back
// to GPT-4.
func (r *Resolver) Model(ctx context.Context) string {
	model := r.config().Model
	if r.settings != nil {
		v, ok, err := r.settings.Get(ctx, SettingModel)
		switch {
		case err != nil:
			logging.APIWarn("failed to read model setting: %v", err)
		case ok && strings.TrimSpace(v) != "":
			model = strings.TrimSpace(v)
		}
	}
	if !config.IsValidModel(model) {
		logging.APIWarn("unknown model %q, falling back to %s", model, config.ModelGPT4)
		return config.ModelGPT4
	}
	return model
}

// Resolve returns the backend for the current model choice. A missing API
// key surfaces as ErrMissingAPIKey.
func (r *Resolver) Resolve(ctx context.Context) (Backend, error) {
	cfg := r.config()
	model := r.Model(ctx)
	provider := ProviderFor(model)

	key, err := r.keys.APIKey(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s key: %w", provider, err)
	}
	if key == "" {
		return nil, fmt.Errorf("%s: %w", provider, ErrMissingAPIKey)
	}

	logging.APIDebug("resolving backend for model %s", model)

	switch model {
	case config.ModelStarCoder, config.ModelCodeLlama:
		hfModel := cfg.LLM.HuggingFace.StarCoderModel
		if model == config.ModelCodeLlama {
			hfModel = cfg.LLM.HuggingFace.CodeLlamaModel
		}
		return NewHuggingFaceClient(HuggingFaceConfig{
			APIKey:  key,
			BaseURL: cfg.LLM.HuggingFace.BaseURL,
			Model:   hfModel,
			Timeout: cfg.GetHuggingFaceTimeout(),
		}), nil
	case config.ModelGemini:
		return NewGeminiClient(ctx, GeminiConfig{
			APIKey:  key,
			Model:   cfg.LLM.Gemini.Model,
			Timeout: cfg.GetGeminiTimeout(),
		})
	default:
		return NewOpenAIClient(OpenAIConfig{
			APIKey:  key,
			BaseURL: cfg.LLM.OpenAI.BaseURL,
			Model:   cfg.LLM.OpenAI.Model,
			Timeout: cfg.GetOpenAITimeout(),
		}), nil
	}
}

// ProviderFor maps a model choice to the credential it needs.
func ProviderFor(model string) Provider {
	switch model {
	case config.ModelStarCoder, config.ModelCodeLlama:
		return ProviderHuggingFace
	case config.ModelGemini:
		return ProviderGemini
	default:
		return ProviderOpenAI
	}
}

// NewKeyProvider builds the provider selected by the credentials source.
func NewKeyProvider(cfg config.CredentialsConfig, settings SettingsReader) (KeyProvider, error) {
	switch cfg.Source {
	case "store":
		if settings == nil {
			return nil, fmt.Errorf("credentials source %q needs a settings store", cfg.Source)
		}
		return NewStoreKeyProvider(settings), nil
	case "env":
		return NewEnvKeyProvider(cfg.EnvFile)
	case "chain", "":
		env, err := NewEnvKeyProvider(cfg.EnvFile)
		if err != nil {
			return nil, err
		}
		if settings == nil {
			return env, nil
		}
		return ChainKeyProvider{NewStoreKeyProvider(settings), env}, nil
	default:
		return nil, fmt.Errorf("unknown credentials source %q", cfg.Source)
	}
}
