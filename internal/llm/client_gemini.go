package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"fastcoding/internal/logging"
)

// GeminiClient implements Backend on the Google GenAI SDK.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional, overrides the SDK endpoint
	Timeout time.Duration
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, config GeminiConfig) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}
	if config.Model == "" {
		config.Model = "gemini-2.5-flash"
	}

	cc := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{client: client, model: config.Model, timeout: config.Timeout}, nil
}

// Name returns the backend name.
func (c *GeminiClient) Name() string {
	return "gemini:" + c.model
}

// Generate sends the prompt with the system instruction and sampling.
func (c *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	startTime := time.Now()
	logging.APIDebug("[Gemini] Generate: model=%s prompt_len=%d", c.model, len(req.Prompt))

	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)},
		geminiConfig(req))
	if err != nil {
		logging.APIError("[Gemini] Generate: request failed: %v", err)
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini: %w", ErrNoCompletion)
	}

	text := resp.Text()
	logging.API("[Gemini] Generate: completed in %v response_len=%d", time.Since(startTime), len(text))
	return text, nil
}

func geminiConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{StopSequences: req.Params.Stop}
	if strings.TrimSpace(req.System) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Params.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.Params.MaxTokens)
	}
	cfg.Temperature = float32Ptr(req.Params.Temperature)
	cfg.TopP = float32Ptr(req.Params.TopP)
	cfg.FrequencyPenalty = float32Ptr(req.Params.FrequencyPenalty)
	cfg.PresencePenalty = float32Ptr(req.Params.PresencePenalty)
	return cfg
}

func float32Ptr(v *float64) *float32 {
	if v == nil {
		return nil
	}
	return genai.Ptr(float32(*v))
}
