package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fastcoding/internal/logging"
)

// Fill-in-the-middle tokens understood by StarCoder-family models.
const (
	fimPrefix = "<fim_prefix>"
	fimSuffix = "<fim_suffix>"
	fimMiddle = "<fim_middle>"
)

// HuggingFaceClient implements Backend for the Hugging Face inference API.
type HuggingFaceClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// HuggingFaceConfig holds configuration for the Hugging Face client.
type HuggingFaceConfig struct {
	APIKey  string
	BaseURL string
	Model   string // e.g. bigcode/starcoder
	Timeout time.Duration
}

// NewHuggingFaceClient creates a new Hugging Face client.
func NewHuggingFaceClient(config HuggingFaceConfig) *HuggingFaceClient {
	return &HuggingFaceClient{
		apiKey:     config.APIKey,
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		model:      config.Model,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

type hfParameters struct {
	MaxNewTokens   int      `json:"max_new_tokens"`
	Temperature    float64  `json:"temperature"`
	TopP           *float64 `json:"top_p,omitempty"`
	Stop           []string `json:"stop,omitempty"`
	ReturnFullText bool     `json:"return_full_text"`
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

// Name returns the backend name.
func (c *HuggingFaceClient) Name() string {
	return "huggingface:" + c.model
}

// Inputs builds the single input string for req. Requests with prefix and
// suffix context use fill-in-the-middle tokens.
func (c *HuggingFaceClient) Inputs(req Request) string {
	if req.HasFIM() {
		return fimPrefix + req.Prefix + fimSuffix + req.Suffix + fimMiddle
	}
	if strings.TrimSpace(req.System) == "" {
		return req.Prompt
	}
	return req.System + "\n\n" + req.Prompt
}

// Generate posts the inputs and returns the first generated text, trimmed.
func (c *HuggingFaceClient) Generate(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("huggingface: %w", ErrMissingAPIKey)
	}

	params := hfParameters{MaxNewTokens: 300, Temperature: 0.3, TopP: req.Params.TopP, Stop: req.Params.Stop}
	if req.Params.MaxTokens > 0 {
		params.MaxNewTokens = req.Params.MaxTokens
	}
	// The inference API rejects a temperature of exactly zero.
	if t := req.Params.Temperature; t != nil && *t > 0 {
		params.Temperature = *t
	}

	body, err := json.Marshal(hfRequest{Inputs: c.Inputs(req), Parameters: params})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	startTime := time.Now()
	logging.APIDebug("[HuggingFace] Generate: model=%s fim=%v", c.model, req.HasFIM())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+c.model, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logging.APIError("[HuggingFace] Generate: request failed: %v", err)
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		logging.APIError("[HuggingFace] Generate: status %d", resp.StatusCode)
		return "", &APIError{Backend: "huggingface", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var generations []hfGeneration
	if err := json.Unmarshal(respBody, &generations); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(generations) == 0 {
		return "", fmt.Errorf("huggingface: %w", ErrNoCompletion)
	}

	text := strings.TrimSpace(generations[0].GeneratedText)
	logging.API("[HuggingFace] Generate: completed in %v response_len=%d", time.Since(startTime), len(text))
	return text, nil
}
