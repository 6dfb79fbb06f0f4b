package prompt

import (
	"sort"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_LoadsEveryKind(t *testing.T) {
	lib, err := Default()
	require.NoError(t, err)

	var kinds []string
	for _, k := range lib.Kinds() {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	assert.Equal(t, []string{"chat", "complete", "document", "generate", "review", "solve"}, kinds)
}

func TestBuild_Generate(t *testing.T) {
	lib, err := Default()
	require.NoError(t, err)

	msgs, err := lib.Build(KindGenerate, Data{
		Language:       "python",
		Strict:         true,
		Before:         "import math\n",
		After:          "\nprint(1)",
		Comment:        "\"\"\"\nmultiply two numbers\n\"\"\"",
		GenerationType: GenerateFunction.String(),
	})
	require.NoError(t, err)

	assert.Contains(t, msgs.System, "Programming language: python")
	assert.Contains(t, msgs.System, "import math")
	assert.Contains(t, msgs.System, "Follow PEP8 styling conventions.")
	assert.Contains(t, msgs.System, "Additional constraints")
	assert.Contains(t, msgs.User, "well-structured function or class")
	assert.Contains(t, msgs.User, "multiply two numbers")
}

func TestBuild_GenerateLenient(t *testing.T) {
	lib, err := Default()
	require.NoError(t, err)

	msgs, err := lib.Build(KindGenerate, Data{Language: "go", Comment: "// x"})
	require.NoError(t, err)

	assert.NotContains(t, msgs.System, "Additional constraints")
	assert.Contains(t, msgs.System, "Adapt to the surrounding code in the file.")
}

func TestBuild_ExplicitRulesWin(t *testing.T) {
	lib, err := Default()
	require.NoError(t, err)

	msgs, err := lib.Build(KindGenerate, Data{Language: "python", Rules: []string{"Use tabs."}})
	require.NoError(t, err)

	assert.Contains(t, msgs.System, "- Use tabs.")
	assert.NotContains(t, msgs.System, "PEP8")
}

func TestBuild_OtherKinds(t *testing.T) {
	lib, err := Default()
	require.NoError(t, err)

	review, err := lib.Build(KindReview, Data{Language: "python", Selection: "def f(x): return x"})
	require.NoError(t, err)
	assert.Contains(t, review.System, "---REVIEW---")
	assert.Contains(t, review.System, "---CODE---")
	assert.Equal(t, "Analyze and fix this code if necessary:\n\ndef f(x): return x", review.User)

	complete, err := lib.Build(KindComplete, Data{Language: "python", Prompt: "def f(<CURSOR>)"})
	require.NoError(t, err)
	assert.Contains(t, complete.System, "----return a + b")
	assert.Equal(t, "def f(<CURSOR>)", complete.User)

	chat, err := lib.Build(KindChat, Data{Message: "how do I sort a list?"})
	require.NoError(t, err)
	assert.Equal(t, "how do I sort a list?", chat.User)

	doc, err := lib.Build(KindDocument, Data{Selection: "x = 1"})
	require.NoError(t, err)
	assert.Contains(t, doc.System, "from the code itself")
}

func TestBuild_UnknownKind(t *testing.T) {
	lib, err := Default()
	require.NoError(t, err)

	_, err = lib.Build(Kind("translate"), Data{})
	assert.Error(t, err)
}

func TestLanguageRules(t *testing.T) {
	lib, err := Default()
	require.NoError(t, err)

	assert.Equal(t, lib.LanguageRules("javascript"), lib.LanguageRules("typescript"))
	assert.Equal(t, lib.LanguageRules("default"), lib.LanguageRules("haskell"))
	assert.Len(t, lib.LanguageRules("rust"), 4)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing default rules", func(t *testing.T) {
		fsys := fstest.MapFS{
			"t/chat.yaml":  {Data: []byte("kind: chat\nsystem: hi\nuser: '{{.Message}}'\n")},
			"t/rules.yaml": {Data: []byte("python: [a]\n")},
		}
		_, err := Load(fsys, "t")
		assert.Error(t, err)
	})

	t.Run("bad template", func(t *testing.T) {
		fsys := fstest.MapFS{
			"t/chat.yaml":  {Data: []byte("kind: chat\nsystem: '{{.Message'\nuser: x\n")},
			"t/rules.yaml": {Data: []byte("default: [a]\n")},
		}
		_, err := Load(fsys, "t")
		assert.Error(t, err)
	})

	t.Run("missing kind", func(t *testing.T) {
		fsys := fstest.MapFS{
			"t/chat.yaml":  {Data: []byte("system: hi\nuser: x\n")},
			"t/rules.yaml": {Data: []byte("default: [a]\n")},
		}
		_, err := Load(fsys, "t")
		assert.Error(t, err)
	})

	t.Run("unknown field at render time", func(t *testing.T) {
		fsys := fstest.MapFS{
			"t/chat.yaml":  {Data: []byte("kind: chat\nsystem: '{{.Nope}}'\nuser: x\n")},
			"t/rules.yaml": {Data: []byte("default: [a]\n")},
		}
		lib, err := Load(fsys, "t")
		require.NoError(t, err)
		_, err = lib.Build(KindChat, Data{})
		assert.Error(t, err)
	})
}

func TestClassifyRequest(t *testing.T) {
	tests := map[string]GenerationType{
		"Une fonction pour multiplier deux entiers": GenerateFunction,
		"Create a CLASS for users":                  GenerateFunction,
		"implement quicksort":                       GenerateFunction,
		"trier la liste":                            GenerateSnippet,
		"sort the array then display it":           GenerateSnippet,
		"check the input":                           GenerateSnippet,
		"function to sort numbers":                  GenerateFunction,
		"multiply two numbers":                      GenerateAuto,
		"":                                          GenerateAuto,
	}
	for comment, want := range tests {
		assert.Equal(t, want, ClassifyRequest(comment), "comment %q", comment)
	}
}
