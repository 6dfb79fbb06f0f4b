package usage

import "time"

// UsageData is the persisted file layout.
type UsageData struct {
	Version   string          `json:"version"`
	Updated   time.Time       `json:"updated"`
	Aggregate AggregatedStats `json:"aggregate"`
}

// AggregatedStats holds counters broken down by backend and feature.
type AggregatedStats struct {
	Total     Counts            `json:"total"`
	ByBackend map[string]Counts `json:"by_backend"` // openai:gpt-4, huggingface:bigcode/starcoder, ...
	ByFeature map[string]Counts `json:"by_feature"` // generate, review, document, complete, chat, solve
}

// Counts sums requests and characters. Providers count tokens differently,
// so characters are the common unit.
type Counts struct {
	Requests    int64 `json:"requests"`
	Failures    int64 `json:"failures"`
	PromptChars int64 `json:"prompt_chars"`
	OutputChars int64 `json:"output_chars"`
}

// Add records one request.
func (c *Counts) Add(prompt, output int, failed bool) {
	c.Requests++
	if failed {
		c.Failures++
	}
	c.PromptChars += int64(prompt)
	c.OutputChars += int64(output)
}
