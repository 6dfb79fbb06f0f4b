package assist

import (
	"context"
	"regexp"
	"strings"

	"fastcoding/internal/editor"
	"fastcoding/internal/lang"
	"fastcoding/internal/logging"
	"fastcoding/internal/prompt"
)

var declarationStart = regexp.MustCompile(`^(\s*)(def |class |async |public |function )`)

// GenerateDocumentation documents the selected text. Functions and classes
// get a docstring inserted on the line after the selection start; other
// blocks get a comment inserted at the selection start.
func (a *Assistant) GenerateDocumentation(ctx context.Context, doc *editor.Document, sel editor.Range) (editor.Edit, error) {
	selected := strings.TrimSpace(doc.GetText(sel))
	if selected == "" {
		return editor.Edit{}, ErrEmptySelection
	}

	profile := lang.Detect(doc.Extension())
	raw, err := a.call(ctx, prompt.KindDocument, prompt.Data{Language: profile.LanguageID, Selection: selected}, nil)
	if err != nil {
		return editor.Edit{}, err
	}
	docText := strings.TrimSpace(raw)
	if docText == "" {
		logging.AssistWarn("generateDocumentation: empty output")
		return editor.Edit{}, ErrEmptyOutput
	}

	start := sel.Start
	if sel.End.Line < start.Line || (sel.End.Line == start.Line && sel.End.Character < start.Character) {
		start = sel.End
	}
	start = doc.Validate(start)
	startLine := doc.LineAt(start.Line)

	if declarationStart.MatchString(selected) {
		indent := editor.LeadingWhitespace(startLine) + "    "
		return editor.Edit{
			Position: editor.Position{Line: start.Line + 1},
			Text:     prefixLines(docText, indent),
		}, nil
	}

	return editor.Edit{
		Position: start,
		Text:     prefixLines(docText, commentPrefix(profile, startLine)),
	}, nil
}

// commentPrefix uses the language's line comment token. Tokens that need a
// closing delimiter (<!--, /*) fall back to the start line's style.
func commentPrefix(p lang.Profile, startLine string) string {
	switch p.CommentType {
	case "//", "#", "--":
		return p.CommentType + " "
	}
	if strings.HasPrefix(strings.TrimLeft(startLine, " \t"), "//") {
		return "// "
	}
	return "# "
}

func prefixLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n") + "\n"
}
