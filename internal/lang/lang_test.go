package lang

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_UnknownExtension(t *testing.T) {
	for _, ext := range []string{"", "rb", "tsx", "md", "unknown"} {
		p := Detect(ext)
		assert.False(t, p.Known(), "ext %q", ext)
		assert.Empty(t, p.LanguageID)
		assert.Empty(t, p.CommentType)
		assert.Nil(t, p.MultiLine)
	}
}

func TestDetect_KnownExtensions(t *testing.T) {
	tests := []struct {
		ext  string
		want Profile
	}{
		{"py", Profile{"python", "#", &Delimiters{`"""`, `"""`}}},
		{"ts", Profile{"typescript", "//", &Delimiters{"/**", "*/"}}},
		{"java", Profile{"java", "//", &Delimiters{"/**", "*/"}}},
		{"cs", Profile{"csharp", "//", &Delimiters{"/*", "*/"}}},
		{"html", Profile{"html", "<!--", &Delimiters{"<!--", "-->"}}},
		{"css", Profile{"css", "/*", &Delimiters{"/*", "*/"}}},
		{"sql", Profile{"sql", "--", &Delimiters{"/*", "*/"}}},
		{"json", Profile{"json", "", nil}},
		{"sh", Profile{"bash", "#", nil}},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Detect(tt.ext)); diff != "" {
				t.Errorf("Detect(%q) mismatch (-want +got):\n%s", tt.ext, diff)
			}
		})
	}
}

func TestDetect_NormalizesExtension(t *testing.T) {
	assert.Equal(t, "python", Detect(".PY").LanguageID)
	assert.Equal(t, "rust", DetectPath("/src/lib/main.rs").LanguageID)
	assert.False(t, DetectPath("Makefile").Known())
}

func TestDetect_ReturnsIndependentDelimiters(t *testing.T) {
	p := Detect("js")
	p.MultiLine.Start = "mutated"
	assert.Equal(t, "/*", Detect("js").MultiLine.Start)
}

func TestExtensions(t *testing.T) {
	assert.Len(t, Extensions(), 15)
}

func TestFormatComment(t *testing.T) {
	assert.Equal(t, "\"\"\"\nsort a list\n\"\"\"", Detect("py").FormatComment("sort a list"))
	assert.Equal(t, "# sort a list", Detect("sh").FormatComment("sort a list"))
}

func TestFunctionNameFromComment(t *testing.T) {
	tests := map[string]string{
		"Une fonction pour multiplier deux entiers en paramètre": "une_fonction_pour_multiplier_deux_entiers_en_paramtre",
		"  Add   Numbers!  ":  "add_numbers",
		"compute sum(a, b)":   "compute_suma_b",
		"!!!":                 "",
		"":                    "",
		"parse\tJSON\nconfig": "parse_json_config",
	}
	for in, want := range tests {
		assert.Equal(t, want, FunctionNameFromComment(in), "input %q", in)
	}
}

func TestIsFunctionImplemented(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		comment  string
		language string
		want     bool
	}{
		{"python def", "def add_numbers(a, b):\n    return a + b\n", "add numbers", "python", true},
		{"python no overlap", "def subtract(a, b):\n    return a - b\n", "add numbers", "python", false},
		{"javascript function", "function sum_values(a, b) { return a + b }", "sum values", "javascript", true},
		{"javascript arrow", "const sum_values = (a, b) => a + b;", "sum values", "javascript", true},
		{"typescript arrow", "const sum_values = (a: number) => a;", "Sum values", "typescript", true},
		{"java public method", "public int sum_values(int a) {}", "sum values", "java", true},
		{"java private method", "private int sum_values(int a) {}", "sum values", "java", false},
		{"c function", "int sum_values(int a) {}", "sum values", "c", true},
		{"rust fn", "fn sum_values(a: i32) -> i32 { a }", "sum values", "rust", true},
		{"go func", "func sum_values(a int) int { return a }", "sum values", "go", true},
		{"bash function", "function greet_user {\n  echo hi\n}", "greet user", "bash", true},
		{"unknown language uses python", "def greet_user():\n  pass", "greet user", "sql", true},
		{"unknown language ignores go", "func greet_user() {}", "greet user", "sql", false},
		{"empty slug", "def _():\n  pass", "???", "python", false},
		{"no-break space joins words", "def add_numbers(a, b):\n    return a + b\n", "add\u00a0numbers", "python", true},
		{"narrow no-break space joins words", "def add_numbers(a, b):\n    return a + b\n", "add\u202fnumbers\u00a0", "python", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFunctionImplemented(tt.text, tt.comment, tt.language))
		})
	}
}

func TestExtract_FrenchMultiplierScenario(t *testing.T) {
	text := "import math\n\n# Une fonction pour multiplier deux entiers en paramètre\n"
	p := Detect("py")

	require.False(t, IsFunctionImplemented(text, "Une fonction pour multiplier deux entiers en paramètre", p.LanguageID))

	got, ok := ExtractLastUnresolvedComment(text, p)
	require.True(t, ok)
	assert.Equal(t, "Une fonction pour multiplier deux entiers en paramètre", got)
}

func TestExtract_SkipsImplementedComments(t *testing.T) {
	text := "# add numbers\ndef add_numbers(a, b):\n    return a + b\n"

	got, ok := ExtractLastUnresolvedComment(text, Detect("py"))
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestExtract_LastSingleLineWins(t *testing.T) {
	text := "// first thing\nlet x = 1;\n// second thing\n"

	got, ok := ExtractLastUnresolvedComment(text, Detect("js"))
	require.True(t, ok)
	assert.Equal(t, "second thing", got)
}

// Block comments are scanned after single-line comments, so a block comment
// wins even when a single-line comment appears later in the file.
func TestExtract_BlockCommentOverwritesLaterSingleLine(t *testing.T) {
	text := "\"\"\"\ncompute the total\n\"\"\"\n\n# multiply two numbers\n"

	got, ok := ExtractLastUnresolvedComment(text, Detect("py"))
	require.True(t, ok)
	assert.Equal(t, "compute the total", got)
}

func TestExtract_BlockCommentAfterSingleLine(t *testing.T) {
	text := "// multiply two numbers\n/*\n  compute the total\n*/\n"

	got, ok := ExtractLastUnresolvedComment(text, Detect("go"))
	require.True(t, ok)
	assert.Equal(t, "compute the total", got)
}

func TestExtract_NoCommentSyntax(t *testing.T) {
	got, ok := ExtractLastUnresolvedComment(`{"a": 1} // not json`, Detect("json"))
	assert.False(t, ok)
	assert.Empty(t, got)

	_, ok = ExtractLastUnresolvedComment("# something", Profile{})
	assert.False(t, ok)
}

func TestExtract_EmptyBlockIgnored(t *testing.T) {
	text := "x = \"\"\"\"\"\"\nprint(x)\n"
	_, ok := ExtractLastUnresolvedComment(text, Detect("py"))
	assert.False(t, ok)
}

// The markup single-line token is the block opener, so the single-line pass
// captures "build a navbar -->" and the block pass then overwrites it.
func TestExtract_MarkupBlockPassOverwritesSingleLineCapture(t *testing.T) {
	text := "<!-- build a navbar -->\n<p>hi</p>\n"
	got, ok := ExtractLastUnresolvedComment(text, Detect("html"))
	require.True(t, ok)
	assert.Equal(t, "build a navbar", got)
}
