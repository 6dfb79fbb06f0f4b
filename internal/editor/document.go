// Package editor models the host editor's view of a file: the document text,
// 0-based positions measured in characters, ranges and insert edits.
package editor

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Position is a 0-based line and character offset.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range spans Start (inclusive) to End (exclusive).
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// IsEmpty reports whether the range selects nothing.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// Edit inserts Text at Position.
type Edit struct {
	Position Position `json:"position"`
	Text     string   `json:"text"`
}

// Document is an immutable snapshot of a file open in the host editor.
type Document struct {
	Path string `json:"path"`
	Text string `json:"text"`

	lines []string
}

// NewDocument creates a document snapshot.
func NewDocument(path, text string) *Document {
	return &Document{Path: path, Text: text}
}

func (d *Document) splitLines() []string {
	if d.lines == nil {
		d.lines = strings.Split(d.Text, "\n")
	}
	return d.lines
}

// Extension returns the lower-cased file extension without the dot.
func (d *Document) Extension() string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(d.Path), "."))
}

// LineCount returns the number of lines. An empty document has one line.
func (d *Document) LineCount() int {
	return len(d.splitLines())
}

// LineAt returns the text of line i without its line break.
// Out-of-range lines are clamped.
func (d *Document) LineAt(i int) string {
	lines := d.splitLines()
	if i < 0 {
		i = 0
	}
	if i >= len(lines) {
		i = len(lines) - 1
	}
	return strings.TrimSuffix(lines[i], "\r")
}

// End returns the position after the last character.
func (d *Document) End() Position {
	last := d.LineCount() - 1
	return Position{Line: last, Character: utf8.RuneCountInString(d.LineAt(last))}
}

// Validate clamps p into the document the way editors do: lines past the end
// snap to the document end, characters past the line end snap to the line end.
func (d *Document) Validate(p Position) Position {
	if p.Line < 0 {
		return Position{}
	}
	if p.Line >= d.LineCount() {
		return d.End()
	}
	n := utf8.RuneCountInString(d.LineAt(p.Line))
	if p.Character < 0 {
		p.Character = 0
	}
	if p.Character > n {
		p.Character = n
	}
	return p
}

// Offset returns the byte offset of p in Text after validation.
func (d *Document) Offset(p Position) int {
	p = d.Validate(p)
	lines := d.splitLines()
	off := 0
	for i := 0; i < p.Line; i++ {
		off += len(lines[i]) + 1
	}
	line := lines[p.Line]
	chars := 0
	for idx := range line {
		if chars == p.Character {
			return off + idx
		}
		chars++
	}
	return off + len(strings.TrimSuffix(line, "\r"))
}

// GetText returns the text inside r. Reversed ranges are normalized.
func (d *Document) GetText(r Range) string {
	start, end := d.Offset(r.Start), d.Offset(r.End)
	if start > end {
		start, end = end, start
	}
	return d.Text[start:end]
}

// Apply returns the document text with e inserted.
func (d *Document) Apply(e Edit) string {
	off := d.Offset(e.Position)
	return d.Text[:off] + e.Text + d.Text[off:]
}

// LeadingWhitespace returns the indentation of s.
func LeadingWhitespace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}
