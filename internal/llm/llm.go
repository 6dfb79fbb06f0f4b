// Package llm talks to the remote text-generation backends. Every vendor
// implements Backend; a Resolver picks one per call from the model setting.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingAPIKey is returned when no credential is configured for the
// selected backend.
var ErrMissingAPIKey = errors.New("API key not configured")

// ErrNoCompletion is returned when the backend answered without any candidate.
var ErrNoCompletion = errors.New("no completion returned")

// Backend generates text for one request.
type Backend interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

// Params are per-call sampling parameters. Nil pointers and zero MaxTokens
// leave the backend default in place.
type Params struct {
	Temperature      *float64
	TopP             *float64
	FrequencyPenalty *float64
	PresencePenalty  *float64
	MaxTokens        int
	Stop             []string
}

// Request is one generation call. Chat backends send System and Prompt as
// role-tagged messages; single-input backends concatenate them, or use
// Prefix/Suffix for fill-in-the-middle when both are available.
type Request struct {
	System string
	Prompt string
	Prefix string
	Suffix string
	Params Params
}

// HasFIM reports whether the request carries fill-in-the-middle context.
func (r Request) HasFIM() bool {
	return r.Prefix != "" || r.Suffix != ""
}

// Float returns a pointer to v, for Params literals.
func Float(v float64) *float64 {
	return &v
}

// APIError is a non-2xx answer from a backend.
type APIError struct {
	Backend    string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: API request failed with status %d: %s", e.Backend, e.StatusCode, e.Body)
}

// IsRateLimited reports whether err is a 429 answer.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}
