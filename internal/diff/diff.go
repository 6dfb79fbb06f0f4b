// Package diff computes line diffs between reviewed code and the code a
// review suggests, using the sergi/go-diff engine.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineType represents the type of diff line
type LineType int

const (
	LineContext LineType = iota // Unchanged context line
	LineAdded                   // Added line
	LineRemoved                 // Removed line
)

// DefaultContext is the number of unchanged lines kept around each change.
const DefaultContext = 3

// Line is one line of a hunk.
type Line struct {
	Content string
	Type    LineType
}

// Hunk is a group of changes with surrounding context. Starts are 1-based.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// Engine wraps a configured diffmatchpatch instance.
type Engine struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewEngine creates an engine tuned for code.
func NewEngine() *Engine {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0 // suggestions are small; favor an exact diff
	return &Engine{dmp: dmp}
}

// DefaultEngine is shared by the package-level helpers.
var DefaultEngine = NewEngine()

// Compute returns the hunks turning oldText into newText.
func (e *Engine) Compute(oldText, newText string, context int) []Hunk {
	return group(e.lines(withNewline(oldText), withNewline(newText)), context)
}

// Unified renders the hunks in unified diff format. Identical inputs yield "".
func (e *Engine) Unified(oldName, newName, oldText, newText string) string {
	hunks := e.Compute(oldText, newText, DefaultContext)
	if len(hunks) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n+++ %s\n", oldName, newName)
	for _, h := range hunks {
		fmt.Fprintf(&b, "@@ -%s +%s @@\n", span(h.OldStart, h.OldCount), span(h.NewStart, h.NewCount))
		for _, l := range h.Lines {
			switch l.Type {
			case LineAdded:
				b.WriteByte('+')
			case LineRemoved:
				b.WriteByte('-')
			default:
				b.WriteByte(' ')
			}
			b.WriteString(l.Content)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Compute is Engine.Compute on the default engine.
func Compute(oldText, newText string, context int) []Hunk {
	return DefaultEngine.Compute(oldText, newText, context)
}

// Unified is Engine.Unified on the default engine.
func Unified(oldName, newName, oldText, newText string) string {
	return DefaultEngine.Unified(oldName, newName, oldText, newText)
}

// lines runs a line-mode diff and flattens it to one entry per line.
func (e *Engine) lines(oldText, newText string) []Line {
	a, b, lineArray := e.dmp.DiffLinesToChars(oldText, newText)
	diffs := e.dmp.DiffCharsToLines(e.dmp.DiffMain(a, b, false), lineArray)

	var out []Line
	for _, d := range diffs {
		typ := LineContext
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			typ = LineAdded
		case diffmatchpatch.DiffDelete:
			typ = LineRemoved
		}
		for _, l := range strings.SplitAfter(d.Text, "\n") {
			if l == "" {
				continue
			}
			out = append(out, Line{Content: strings.TrimSuffix(l, "\n"), Type: typ})
		}
	}
	return out
}

// group cuts lines into hunks. Changes closer than 2*context lines share a hunk.
func group(lines []Line, context int) []Hunk {
	if context < 0 {
		context = 0
	}

	// oldBefore[i] and newBefore[i] count the lines preceding lines[i] on each side.
	oldBefore := make([]int, len(lines)+1)
	newBefore := make([]int, len(lines)+1)
	for i, l := range lines {
		oldBefore[i+1], newBefore[i+1] = oldBefore[i], newBefore[i]
		if l.Type != LineAdded {
			oldBefore[i+1]++
		}
		if l.Type != LineRemoved {
			newBefore[i+1]++
		}
	}

	var hunks []Hunk
	for i := 0; i < len(lines); {
		if lines[i].Type == LineContext {
			i++
			continue
		}

		last := i
		for j := i + 1; j < len(lines); j++ {
			if lines[j].Type == LineContext {
				continue
			}
			if j-last > 2*context {
				break
			}
			last = j
		}

		start := max(0, i-context)
		stop := min(len(lines), last+context+1)
		h := Hunk{Lines: append([]Line(nil), lines[start:stop]...)}
		h.OldCount = oldBefore[stop] - oldBefore[start]
		h.NewCount = newBefore[stop] - newBefore[start]
		h.OldStart = oldBefore[start]
		if h.OldCount > 0 {
			h.OldStart++
		}
		h.NewStart = newBefore[start]
		if h.NewCount > 0 {
			h.NewStart++
		}
		hunks = append(hunks, h)
		i = stop
	}
	return hunks
}

func span(start, count int) string {
	if count == 1 {
		return fmt.Sprint(start)
	}
	return fmt.Sprintf("%d,%d", start, count)
}

func withNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
