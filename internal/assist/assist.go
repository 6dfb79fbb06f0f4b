// Package assist implements the editor features: code generation from a
// comment, code review, documentation, inline completion, chat and the
// evaluation solver. Each operation is one backend round trip followed by
// string post-processing.
package assist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fastcoding/internal/llm"
	"fastcoding/internal/logging"
	"fastcoding/internal/prompt"
)

// Warnings the surfaces show to the user. None of them is a transport failure.
var (
	ErrUnknownLanguage     = errors.New("could not detect the language, check the file extension")
	ErrNoUnresolvedComment = errors.New("no unresolved comment found")
	ErrAlreadyImplemented  = errors.New("the requested function seems to already exist")
	ErrEmptySelection      = errors.New("select a function, a class or a block of code first")
	ErrEmptyOutput         = errors.New("the model returned no usable output, try being more precise")
)

// slowRequest is when a model round trip is logged as a warning.
const slowRequest = 20 * time.Second

// Fixed chat replies.
const (
	ChatEmptyReply = "Sorry, I could not generate a response."
	ChatErrorReply = "An error occurred while generating the response."
)

// IsWarning reports whether err is a user-facing warning rather than a
// transport or credential failure.
func IsWarning(err error) bool {
	for _, w := range []error{ErrUnknownLanguage, ErrNoUnresolvedComment, ErrAlreadyImplemented, ErrEmptySelection, ErrEmptyOutput, llm.ErrMissingAPIKey} {
		if errors.Is(err, w) {
			return true
		}
	}
	return false
}

// Resolver returns the backend for the current model choice.
type Resolver interface {
	Resolve(ctx context.Context) (llm.Backend, error)
}

// Recorder receives one entry per model request.
type Recorder interface {
	Record(backend, feature string, promptChars, outputChars int, err error)
}

// Options tune how much surrounding text is sent and how strict prompts are.
type Options struct {
	ContextLines         int // lines above and below the cursor for generation
	CompletionLinesAfter int // lines after the cursor for inline completion
	Strict               bool
	Usage                Recorder // optional
}

// DefaultOptions returns the defaults.
func DefaultOptions() Options {
	return Options{ContextLines: 5, CompletionLinesAfter: 10, Strict: true}
}

// Assistant runs the features against a backend resolved per call.
type Assistant struct {
	resolver Resolver
	prompts  *prompt.Library
	opts     Options
}

// New creates an assistant.
func New(resolver Resolver, prompts *prompt.Library, opts Options) *Assistant {
	if opts.ContextLines <= 0 {
		opts.ContextLines = 5
	}
	if opts.CompletionLinesAfter <= 0 {
		opts.CompletionLinesAfter = 10
	}
	return &Assistant{resolver: resolver, prompts: prompts, opts: opts}
}

// sampling per call site.
var sampling = map[prompt.Kind]llm.Params{
	prompt.KindGenerate: {Temperature: llm.Float(0.1), TopP: llm.Float(0.9), FrequencyPenalty: llm.Float(0.1), PresencePenalty: llm.Float(0.1), MaxTokens: 350},
	prompt.KindComplete: {Temperature: llm.Float(0.1), TopP: llm.Float(0.9), FrequencyPenalty: llm.Float(0.1), PresencePenalty: llm.Float(0.1), MaxTokens: 500},
	prompt.KindReview:   {Temperature: llm.Float(0.1), TopP: llm.Float(1), FrequencyPenalty: llm.Float(0), PresencePenalty: llm.Float(0), MaxTokens: 200},
	prompt.KindDocument: {Temperature: llm.Float(0.4), MaxTokens: 200},
	prompt.KindChat:     {},
	prompt.KindSolve:    {Temperature: llm.Float(0.7), MaxTokens: 1000, Stop: []string{"\n\n"}},
}

// SamplingFor returns a copy of the sampling parameters of a call site.
func SamplingFor(kind prompt.Kind) llm.Params {
	p := sampling[kind]
	p.Stop = append([]string(nil), p.Stop...)
	return p
}

// call renders the prompt for kind, resolves the backend and runs it.
func (a *Assistant) call(ctx context.Context, kind prompt.Kind, data prompt.Data, fim *llm.Request) (string, error) {
	data.Strict = a.opts.Strict
	msgs, err := a.prompts.Build(kind, data)
	if err != nil {
		return "", err
	}

	backend, err := a.resolver.Resolve(ctx)
	if err != nil {
		return "", err
	}

	req := llm.Request{System: msgs.System, Prompt: msgs.User, Params: SamplingFor(kind)}
	if fim != nil {
		req.Prefix, req.Suffix = fim.Prefix, fim.Suffix
	}

	timer := logging.StartTimer(logging.CategoryAssist, fmt.Sprintf("%s via %s", kind, backend.Name()))
	defer timer.StopWithThreshold(slowRequest)

	out, err := backend.Generate(ctx, req)
	if a.opts.Usage != nil {
		a.opts.Usage.Record(backend.Name(), string(kind), len(req.System)+len(req.Prompt), len(out), err)
	}
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", kind, err)
	}
	return out, nil
}
