package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sample = "line0\nline1\n    indented\nlast"

func TestDocument_Lines(t *testing.T) {
	d := NewDocument("/tmp/a.PY", sample)

	assert.Equal(t, "py", d.Extension())
	assert.Equal(t, 4, d.LineCount())
	assert.Equal(t, "    indented", d.LineAt(2))
	assert.Equal(t, "line0", d.LineAt(-3))
	assert.Equal(t, "last", d.LineAt(99))
	assert.Equal(t, Position{Line: 3, Character: 4}, d.End())
	assert.Equal(t, 1, NewDocument("x", "").LineCount())
}

func TestDocument_Validate(t *testing.T) {
	d := NewDocument("a.go", sample)

	assert.Equal(t, Position{}, d.Validate(Position{Line: -1, Character: 3}))
	assert.Equal(t, Position{Line: 1, Character: 5}, d.Validate(Position{Line: 1, Character: 1000}))
	assert.Equal(t, Position{Line: 3, Character: 4}, d.Validate(Position{Line: 10, Character: 0}))
	assert.Equal(t, Position{Line: 2, Character: 0}, d.Validate(Position{Line: 2, Character: -2}))
}

func TestDocument_GetText(t *testing.T) {
	d := NewDocument("a.go", sample)

	tests := []struct {
		name string
		r    Range
		want string
	}{
		{"whole line", Range{Position{1, 0}, Position{1, 5}}, "line1"},
		{"across lines", Range{Position{0, 2}, Position{1, 2}}, "ne0\nli"},
		{"clamped end", Range{Position{2, 0}, Position{10, 1000}}, "    indented\nlast"},
		{"reversed", Range{Position{1, 5}, Position{1, 0}}, "line1"},
		{"empty", Range{Position{1, 3}, Position{1, 3}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.GetText(tt.r))
		})
	}
}

func TestDocument_MultibyteCharacters(t *testing.T) {
	d := NewDocument("a.py", "# paramètre\nx")

	assert.Equal(t, "paramètre", d.GetText(Range{Position{0, 2}, Position{0, 11}}))
	assert.Equal(t, Position{Line: 0, Character: 11}, d.Validate(Position{Line: 0, Character: 50}))
}

func TestDocument_CRLF(t *testing.T) {
	d := NewDocument("a.py", "ab\r\ncd")

	assert.Equal(t, "ab", d.LineAt(0))
	assert.Equal(t, "ab", d.GetText(Range{Position{0, 0}, Position{0, 1000}}))
}

func TestDocument_Apply(t *testing.T) {
	d := NewDocument("a.py", "def f():\n    pass\n")

	got := d.Apply(Edit{Position: Position{Line: 1, Character: 0}, Text: "    \"\"\"Doc.\"\"\"\n"})
	assert.Equal(t, "def f():\n    \"\"\"Doc.\"\"\"\n    pass\n", got)
}

func TestLeadingWhitespace(t *testing.T) {
	assert.Equal(t, "\t  ", LeadingWhitespace("\t  x = 1"))
	assert.Equal(t, "", LeadingWhitespace("x"))
	assert.Equal(t, "  ", LeadingWhitespace("  "))
}

func TestRange_IsEmpty(t *testing.T) {
	assert.True(t, Range{}.IsEmpty())
	assert.False(t, Range{End: Position{Character: 1}}.IsEmpty())
}
