package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"language fence", "```python\ndef f():\n    return 1\n```", "def f():\n    return 1"},
		{"bare fence", "```\nx = 1\n```", "x = 1"},
		{"no fence", "  x = 1  ", "x = 1"},
		{"surrounding prose kept", "Here:\n```js\nlet a = 1;\n```\nDone", "Here:\nlet a = 1;\nDone"},
		{"two blocks", "```go\na()\n```\n```go\nb()\n```", "a()\nb()"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripFences(tt.in)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "```")
			assert.Equal(t, got, StripFences(got), "second strip must be a no-op")
		})
	}
}

func TestStripCodeBlock(t *testing.T) {
	assert.Equal(t, "def f():\n    pass", StripCodeBlock("```python\ndef f():\n    pass\n```"))
	assert.Equal(t, "x = 1", StripCodeBlock("```\nx = 1```"))
	assert.Equal(t, "a ``` b", StripCodeBlock("a ``` b"))
}

func TestRemoveDashIndentation(t *testing.T) {
	in := "def f(x):\n----if x:\n--------return 1\n----return 0\n--- keep\n-x"
	want := "def f(x):\n    if x:\n        return 1\n    return 0\n--- keep\n-x"
	assert.Equal(t, want, RemoveDashIndentation(in))
}

func TestRemoveDashIndentation_PartialGroup(t *testing.T) {
	// six dashes: one full group converted, the remainder stays
	assert.Equal(t, "    --y", RemoveDashIndentation("------y"))
}

func TestFixPythonDocstring(t *testing.T) {
	in := "def add(a, b): \"\"\"Add two numbers.\n    \"\"\"\n    return a + b"
	want := "def add(a, b):\n    \"\"\"Add two numbers.\n    \"\"\"\n    return a + b"
	assert.Equal(t, want, FixPythonDocstring(in))
}

func TestFixPythonDocstring_Indented(t *testing.T) {
	in := "class A:\n    def m(self): \"\"\"Doc.\"\"\"\n        pass"
	want := "class A:\n    def m(self):\n        \"\"\"Doc.\"\"\"\n        pass"
	assert.Equal(t, want, FixPythonDocstring(in))
}

func TestFixPythonDocstring_AlreadyCorrect(t *testing.T) {
	in := "def add(a, b):\n    return a + b"
	assert.Equal(t, in, FixPythonDocstring(in))
}

func TestStripRepeatedSignature(t *testing.T) {
	prompt := "def add(a, b):\n    \"\"\"Add.\"\"\"\n"

	assert.Equal(t, "    return a + b", StripRepeatedSignature(prompt, "def add(a, b):\n    return a + b"))
	assert.Equal(t, "def sub(a, b):\n    return a - b", StripRepeatedSignature(prompt, "def sub(a, b):\n    return a - b"))
	assert.Equal(t, "    return a + b", StripRepeatedSignature(prompt, "    return a + b"))
}

func TestSplitReview(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Review
	}{
		{
			name: "both sections",
			in:   "---REVIEW---\nMissing docstring.\n---CODE---\ndef f():\n    pass\n",
			want: Review{Review: "Missing docstring.", Code: "def f():\n    pass"},
		},
		{
			name: "code marker missing",
			in:   "preamble ---REVIEW--- Looks fine overall.\nNo changes.",
			want: Review{Review: "Looks fine overall.\nNo changes."},
		},
		{
			name: "review marker missing",
			in:   "---CODE---\nx = 1",
			want: Review{Code: "x = 1"},
		},
		{
			name: "no markers",
			in:   "just prose",
			want: Review{},
		},
		{
			name: "empty",
			in:   "",
			want: Review{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() { SplitReview(tt.in) })
			assert.Equal(t, tt.want, SplitReview(tt.in))
		})
	}
	assert.True(t, Review{}.Empty())
}
