package assist

import (
	"context"
	"strings"

	"fastcoding/internal/editor"
	"fastcoding/internal/lang"
	"fastcoding/internal/llm"
	"fastcoding/internal/logging"
	"fastcoding/internal/postprocess"
	"fastcoding/internal/prompt"
)

// CursorMarker marks the insertion point in completion prompts.
const CursorMarker = "<CURSOR>"

// CompletionContext returns everything before pos and CompletionLinesAfter
// lines after it.
func (a *Assistant) CompletionContext(doc *editor.Document, pos editor.Position) CodeContext {
	end := min(doc.LineCount()-1, pos.Line+a.opts.CompletionLinesAfter)
	return CodeContext{
		Before: doc.GetText(editor.Range{Start: editor.Position{}, End: pos}),
		After:  doc.GetText(editor.Range{Start: pos, End: editor.Position{Line: end, Character: 1000}}),
	}
}

// Complete returns ghost text for pos. Failures are logged and yield an
// empty suggestion.
func (a *Assistant) Complete(ctx context.Context, doc *editor.Document, pos editor.Position) string {
	language := lang.Detect(doc.Extension()).LanguageID
	if language == "" {
		language = "python"
	}
	out, err := a.CompleteText(ctx, language, a.CompletionContext(doc, pos))
	if err != nil {
		logging.AssistError("inline completion failed: %v", err)
		return ""
	}
	return strings.TrimSpace(out)
}

// CompleteText completes the code between cc.Before and cc.After. The first
// line keeps its indentation so the text can be appended to cc.Before.
func (a *Assistant) CompleteText(ctx context.Context, language string, cc CodeContext) (string, error) {
	raw, err := a.call(ctx, prompt.KindComplete, prompt.Data{
		Language: language,
		Prompt:   cc.Before + CursorMarker + cc.After,
	}, &llm.Request{Prefix: cc.Before, Suffix: cc.After})
	if err != nil {
		return "", err
	}
	return postprocess.RemoveDashIndentation(strings.TrimSpace(raw)), nil
}
