package assist

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fastcoding/internal/editor"
	"fastcoding/internal/llm"
	"fastcoding/internal/prompt"
)

type fakeBackend struct {
	mu    sync.Mutex
	reply string
	err   error
	reqs  []llm.Request
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Generate(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return f.reply, f.err
}

func (f *fakeBackend) last(t *testing.T) llm.Request {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.reqs)
	return f.reqs[len(f.reqs)-1]
}

type fakeResolver struct {
	backend llm.Backend
	err     error
}

func (r fakeResolver) Resolve(context.Context) (llm.Backend, error) {
	return r.backend, r.err
}

func newAssistant(t *testing.T, b *fakeBackend) *Assistant {
	t.Helper()
	lib, err := prompt.Default()
	require.NoError(t, err)
	return New(fakeResolver{backend: b}, lib, DefaultOptions())
}

func TestGenerateCode(t *testing.T) {
	b := &fakeBackend{reply: "```python\ndef multiply_two_numbers(a, b):\n    return a * b\n```"}
	a := newAssistant(t, b)

	doc := editor.NewDocument("calc.py", "import math\n\n# multiply two numbers\n")
	pos := editor.Position{Line: 3, Character: 0}

	edit, err := a.GenerateCode(context.Background(), doc, pos)
	require.NoError(t, err)
	assert.Equal(t, pos, edit.Position)
	assert.Equal(t, "def multiply_two_numbers(a, b):\n    return a * b", edit.Text)

	req := b.last(t)
	assert.Contains(t, req.System, "Programming language: python")
	assert.Contains(t, req.Prompt, "multiply two numbers")
	if diff := cmp.Diff(SamplingFor(prompt.KindGenerate), req.Params); diff != "" {
		t.Errorf("sampling mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateCode_Warnings(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		text  string
		reply string
		want  error
	}{
		{"unknown language", "notes.txt", "# do it\n", "x", ErrUnknownLanguage},
		{"no comment", "main.go", "package main\n", "x", ErrNoUnresolvedComment},
		{"implemented comment is skipped", "calc.py", "# add numbers\ndef add_numbers(a, b):\n    return a + b\n", "x", ErrNoUnresolvedComment},
		{"empty output", "calc.py", "# add numbers\n", "```\n```", ErrEmptyOutput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAssistant(t, &fakeBackend{reply: tt.reply})
			_, err := a.GenerateCode(context.Background(), editor.NewDocument(tt.path, tt.text), editor.Position{Line: 1})
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.True(t, IsWarning(err))
		})
	}
}

func TestGenerateCode_TransportError(t *testing.T) {
	a := newAssistant(t, &fakeBackend{err: &llm.APIError{Backend: "openai", StatusCode: 500, Body: "boom"}})
	_, err := a.GenerateCode(context.Background(), editor.NewDocument("a.py", "# sort a list\n"), editor.Position{Line: 1})
	require.Error(t, err)
	assert.False(t, IsWarning(err))

	var apiErr *llm.APIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestGenerationContext(t *testing.T) {
	a := newAssistant(t, &fakeBackend{})
	doc := editor.NewDocument("a.py", "l0\nl1\nl2\nl3\nl4\nl5\nl6\nl7\nl8\nl9\nl10\nl11\nl12")

	cc := a.GenerationContext(doc, editor.Position{Line: 6, Character: 1})
	assert.Equal(t, "l1\nl2\nl3\nl4\nl5\nl", cc.Before)
	assert.Equal(t, "6\nl7\nl8\nl9\nl10\nl11", cc.After)

	cc = a.GenerationContext(doc, editor.Position{Line: 1, Character: 0})
	assert.Equal(t, "l0\n", cc.Before)
}

func TestReviewCode(t *testing.T) {
	b := &fakeBackend{reply: "---REVIEW---\nMissing docstring.\n---CODE---\ndef f(x):    \"\"\"Return x.\"\"\"\n    return x"}
	a := newAssistant(t, b)

	doc := editor.NewDocument("f.py", "def f(x):\n    return x\n")
	res, err := a.ReviewCode(context.Background(), doc, editor.Range{End: editor.Position{Line: 2}})
	require.NoError(t, err)

	assert.Equal(t, "Missing docstring.", res.Review)
	assert.Equal(t, "def f(x):\n    \"\"\"Return x.\"\"\"\n    return x", res.Code)
	assert.Equal(t, "### Code review\n\nMissing docstring.\n\n### Suggested code\n\n```python\n"+res.Code+"\n```", res.Markdown)
	assert.Equal(t, "Analyze and fix this code if necessary:\n\ndef f(x):\n    return x", b.last(t).Prompt)
	assert.Equal(t, "--- selection\n+++ suggestion\n@@ -1,2 +1,3 @@\n def f(x):\n+    \"\"\"Return x.\"\"\"\n     return x\n", res.Diff)
}

func TestReviewCode_Degenerate(t *testing.T) {
	doc := editor.NewDocument("f.js", "const x = 1;")
	all := editor.Range{End: editor.Position{Line: 0, Character: 12}}

	_, err := newAssistant(t, &fakeBackend{reply: "x"}).ReviewCode(context.Background(), doc, editor.Range{})
	assert.True(t, errors.Is(err, ErrEmptySelection))

	_, err = newAssistant(t, &fakeBackend{reply: "looks fine"}).ReviewCode(context.Background(), doc, all)
	assert.True(t, errors.Is(err, ErrEmptyOutput))

	res, err := newAssistant(t, &fakeBackend{reply: "---REVIEW---\nfine"}).ReviewCode(context.Background(), doc, all)
	require.NoError(t, err)
	assert.Equal(t, "### Code review\n\nfine", res.Markdown)
	assert.Empty(t, res.Code)
	assert.Empty(t, res.Diff)
}

func TestGenerateDocumentation_Function(t *testing.T) {
	b := &fakeBackend{reply: "\"\"\"\nAdd two numbers.\n\"\"\"\n"}
	a := newAssistant(t, b)

	doc := editor.NewDocument("m.py", "class M:\n    def add(self, a, b):\n        return a + b\n")
	sel := editor.Range{Start: editor.Position{Line: 1}, End: editor.Position{Line: 2, Character: 20}}

	edit, err := a.GenerateDocumentation(context.Background(), doc, sel)
	require.NoError(t, err)
	assert.Equal(t, editor.Position{Line: 2}, edit.Position)
	assert.Equal(t, "        \"\"\"\n        Add two numbers.\n        \"\"\"\n", edit.Text)
	assert.Equal(t, SamplingFor(prompt.KindDocument), b.last(t).Params)
}

func TestGenerateDocumentation_Block(t *testing.T) {
	a := newAssistant(t, &fakeBackend{reply: "Print the sum"})

	doc := editor.NewDocument("run.js", "let r = add(5, 3);\nconsole.log(r);\n")
	sel := editor.Range{End: editor.Position{Line: 1, Character: 15}}
	edit, err := a.GenerateDocumentation(context.Background(), doc, sel)
	require.NoError(t, err)
	assert.Equal(t, editor.Position{}, edit.Position)
	assert.Equal(t, "// Print the sum\n", edit.Text)

	unknown := editor.NewDocument("notes.txt", "  // keep\nx\n")
	edit, err = a.GenerateDocumentation(context.Background(), unknown, editor.Range{End: editor.Position{Line: 1, Character: 1}})
	require.NoError(t, err)
	assert.Equal(t, "// Print the sum\n", edit.Text)

	html := editor.NewDocument("a.html", "<p>x</p>\n")
	edit, err = a.GenerateDocumentation(context.Background(), html, editor.Range{End: editor.Position{Character: 8}})
	require.NoError(t, err)
	assert.Equal(t, "# Print the sum\n", edit.Text)
}

func TestGenerateDocumentation_Errors(t *testing.T) {
	doc := editor.NewDocument("a.py", "x = 1\n")
	_, err := newAssistant(t, &fakeBackend{reply: "doc"}).GenerateDocumentation(context.Background(), doc, editor.Range{})
	assert.True(t, errors.Is(err, ErrEmptySelection))

	_, err = newAssistant(t, &fakeBackend{reply: "  \n"}).GenerateDocumentation(context.Background(), doc, editor.Range{End: editor.Position{Character: 5}})
	assert.True(t, errors.Is(err, ErrEmptyOutput))
}

func TestComplete(t *testing.T) {
	b := &fakeBackend{reply: "  ----if b == 0:\n--------raise ZeroDivisionError\n----return a / b\n"}
	a := newAssistant(t, b)

	doc := editor.NewDocument("div.py", "def div(a, b):\n    \n\nprint(div(4, 2))")
	got := a.Complete(context.Background(), doc, editor.Position{Line: 1, Character: 4})
	assert.Equal(t, "if b == 0:\n        raise ZeroDivisionError\n    return a / b", got)

	req := b.last(t)
	assert.Equal(t, "def div(a, b):\n    <CURSOR>\n\nprint(div(4, 2))", req.Prompt)
	assert.Equal(t, "def div(a, b):\n    ", req.Prefix)
	assert.Equal(t, "\n\nprint(div(4, 2))", req.Suffix)
}

func TestCompleteText_KeepsLeadingIndentation(t *testing.T) {
	b := &fakeBackend{reply: "\n----return a + b\n"}
	out, err := newAssistant(t, b).CompleteText(context.Background(), "python", CodeContext{Before: "def add(a, b):\n"})
	require.NoError(t, err)
	assert.Equal(t, "    return a + b", out)

	doc := editor.NewDocument("add.py", "def add(a, b):\n")
	assert.Equal(t, "return a + b", newAssistant(t, b).Complete(context.Background(), doc, editor.Position{Line: 1}), "ghost text is trimmed")
}

func TestComplete_ErrorYieldsEmpty(t *testing.T) {
	a := newAssistant(t, &fakeBackend{err: errors.New("network down")})
	assert.Empty(t, a.Complete(context.Background(), editor.NewDocument("a.py", "x"), editor.Position{}))

	lib, err := prompt.Default()
	require.NoError(t, err)
	noKey := New(fakeResolver{err: llm.ErrMissingAPIKey}, lib, Options{})
	assert.Empty(t, noKey.Complete(context.Background(), editor.NewDocument("a.py", "x"), editor.Position{}))
}

func TestChat(t *testing.T) {
	b := &fakeBackend{reply: "### Answer"}
	assert.Equal(t, "### Answer", newAssistant(t, b).Chat(context.Background(), "hello"))
	assert.Equal(t, llm.Params{}, b.last(t).Params)

	assert.Equal(t, ChatEmptyReply, newAssistant(t, &fakeBackend{reply: " "}).Chat(context.Background(), "hello"))
	assert.Equal(t, ChatErrorReply, newAssistant(t, &fakeBackend{err: errors.New("x")}).Chat(context.Background(), "hello"))
}

func TestSolve(t *testing.T) {
	b := &fakeBackend{reply: "def f():\n    return 1"}
	out, err := newAssistant(t, b).Solve(context.Background(), "", "def f():\n")
	require.NoError(t, err)
	assert.Equal(t, "def f():\n    return 1", out)

	req := b.last(t)
	assert.Equal(t, []string{"\n\n"}, req.Params.Stop)
	assert.Equal(t, 1000, req.Params.MaxTokens)
	assert.Contains(t, req.System, "complete python functions")
}

type recordedCall struct {
	backend, feature string
	prompt, output   int
	failed           bool
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (r *fakeRecorder) Record(backend, feature string, promptChars, outputChars int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{backend, feature, promptChars, outputChars, err != nil})
}

func TestUsageIsRecorded(t *testing.T) {
	lib, err := prompt.Default()
	require.NoError(t, err)

	rec := &fakeRecorder{}
	opts := DefaultOptions()
	opts.Usage = rec

	b := &fakeBackend{reply: "hi"}
	New(fakeResolver{backend: b}, lib, opts).Chat(context.Background(), "hello")
	New(fakeResolver{backend: &fakeBackend{err: errors.New("down")}}, lib, opts).Chat(context.Background(), "hello")
	New(fakeResolver{err: llm.ErrMissingAPIKey}, lib, opts).Chat(context.Background(), "hello")

	require.Len(t, rec.calls, 2, "no backend, no record")
	req := b.last(t)
	assert.Equal(t, recordedCall{"fake", "chat", len(req.System) + len(req.Prompt), 2, false}, rec.calls[0])
	assert.True(t, rec.calls[1].failed)
	assert.Zero(t, rec.calls[1].output)
}

func TestUsageCountsCompletionContextOnce(t *testing.T) {
	lib, err := prompt.Default()
	require.NoError(t, err)

	rec := &fakeRecorder{}
	opts := DefaultOptions()
	opts.Usage = rec

	b := &fakeBackend{reply: "x"}
	_, err = New(fakeResolver{backend: b}, lib, opts).CompleteText(context.Background(), "python", CodeContext{Before: "def f():\n", After: "\nprint(f())"})
	require.NoError(t, err)

	req := b.last(t)
	require.NotEmpty(t, req.Prefix)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, len(req.System)+len(req.Prompt), rec.calls[0].prompt, "prefix and suffix repeat the prompt")
}
