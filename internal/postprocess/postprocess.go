// Package postprocess cleans raw model output before it reaches the editor.
package postprocess

import (
	"regexp"
	"strings"
)

var (
	fenceOpen      = regexp.MustCompile("```[a-zA-Z]*\n?")
	codeBlockStart = regexp.MustCompile("^```(python)?")
	codeBlockEnd   = regexp.MustCompile("```$")
	dashIndent     = regexp.MustCompile(`^(-{4})+`)
	docstringDef   = regexp.MustCompile(`(?m)^(\s*def .*?\)):\s*"""`)
	leadingSpace   = regexp.MustCompile(`^\s*`)
)

// StripFences removes every markdown fence, opening fences with their
// language tag and line break included, then trims. Applying it twice gives
// the same result as applying it once.
func StripFences(s string) string {
	s = fenceOpen.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// StripCodeBlock removes a leading ``` or ```python and a trailing ``` only.
func StripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	s = codeBlockStart.ReplaceAllString(s, "")
	s = codeBlockEnd.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// RemoveDashIndentation turns leading groups of four dashes back into spaces,
// one space per dash, line by line.
func RemoveDashIndentation(code string) string {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		if m := dashIndent.FindString(line); m != "" {
			lines[i] = strings.Repeat(" ", len(m)) + line[len(m):]
		}
	}
	return strings.Join(lines, "\n")
}

// FixPythonDocstring moves a docstring that opens on the same line as its def
// onto its own line, indented one level under the def.
func FixPythonDocstring(code string) string {
	return docstringDef.ReplaceAllStringFunc(code, func(match string) string {
		defLine := docstringDef.FindStringSubmatch(match)[1]
		indent := leadingSpace.FindString(defLine)
		return defLine + ":\n" + indent + `    """`
	})
}

// StripRepeatedSignature drops the first line of a completion when it starts
// with "def" and that line already appears in prompt.
func StripRepeatedSignature(prompt, completion string) string {
	if !strings.HasPrefix(completion, "def") {
		return completion
	}
	lines := strings.Split(completion, "\n")
	if !strings.Contains(prompt, strings.TrimSpace(lines[0])) {
		return completion
	}
	return strings.Join(lines[1:], "\n")
}
