package config

import "time"

// LLMConfig configures the remote model backends.
type LLMConfig struct {
	OpenAI      OpenAIConfig      `yaml:"openai"`
	HuggingFace HuggingFaceConfig `yaml:"huggingface"`
	Gemini      GeminiConfig      `yaml:"gemini"`
}

// OpenAIConfig configures the chat-completions backend.
type OpenAIConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`
}

// HuggingFaceConfig configures the inference-API backend.
// StarCoder and CodeLlama share the endpoint and differ only by model path.
type HuggingFaceConfig struct {
	BaseURL        string `yaml:"base_url"`
	StarCoderModel string `yaml:"starcoder_model"`
	CodeLlamaModel string `yaml:"codellama_model"`
	Timeout        string `yaml:"timeout"`
}

// GeminiConfig configures the Gemini backend.
type GeminiConfig struct {
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`
}

// DefaultLLMConfig returns the backend defaults.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		OpenAI: OpenAIConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4-turbo",
			Timeout: "60s",
		},
		HuggingFace: HuggingFaceConfig{
			BaseURL:        "https://api-inference.huggingface.co/models",
			StarCoderModel: "bigcode/starcoder",
			CodeLlamaModel: "codellama/CodeLlama-7b-hf",
			Timeout:        "60s",
		},
		Gemini: GeminiConfig{
			Model:   "gemini-2.5-flash",
			Timeout: "60s",
		},
	}
}

// GetOpenAITimeout returns the OpenAI timeout as a duration.
func (c *Config) GetOpenAITimeout() time.Duration {
	return parseDuration(c.LLM.OpenAI.Timeout, 60*time.Second)
}

// GetHuggingFaceTimeout returns the Hugging Face timeout as a duration.
func (c *Config) GetHuggingFaceTimeout() time.Duration {
	return parseDuration(c.LLM.HuggingFace.Timeout, 60*time.Second)
}

// GetGeminiTimeout returns the Gemini timeout as a duration.
func (c *Config) GetGeminiTimeout() time.Duration {
	return parseDuration(c.LLM.Gemini.Timeout, 60*time.Second)
}

// GetEvalTimeout returns the per-test timeout of the evaluation harness.
func (c *Config) GetEvalTimeout() time.Duration {
	return parseDuration(c.Eval.Timeout, 30*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
