package assist

import (
	"context"
	"strings"

	"fastcoding/internal/editor"
	"fastcoding/internal/lang"
	"fastcoding/internal/logging"
	"fastcoding/internal/postprocess"
	"fastcoding/internal/prompt"
)

// CodeContext is the text around the cursor sent with a request.
type CodeContext struct {
	Before string
	After  string
}

// GenerationContext returns the window of ContextLines lines above and
// below pos.
func (a *Assistant) GenerationContext(doc *editor.Document, pos editor.Position) CodeContext {
	start := max(0, pos.Line-a.opts.ContextLines)
	end := min(doc.LineCount(), pos.Line+a.opts.ContextLines)
	return CodeContext{
		Before: doc.GetText(editor.Range{Start: editor.Position{Line: start}, End: pos}),
		After:  doc.GetText(editor.Range{Start: pos, End: editor.Position{Line: end, Character: 1000}}),
	}
}

// GenerateCode implements the last unresolved comment in doc and returns the
// code as an insert at pos.
func (a *Assistant) GenerateCode(ctx context.Context, doc *editor.Document, pos editor.Position) (editor.Edit, error) {
	profile := lang.Detect(doc.Extension())
	if !profile.Known() {
		return editor.Edit{}, ErrUnknownLanguage
	}

	cc := a.GenerationContext(doc, pos)

	comment, ok := lang.ExtractLastUnresolvedComment(doc.Text, profile)
	if !ok {
		return editor.Edit{}, ErrNoUnresolvedComment
	}
	if lang.IsFunctionImplemented(doc.Text, comment, profile.LanguageID) {
		return editor.Edit{}, ErrAlreadyImplemented
	}

	genType := prompt.ClassifyRequest(comment)
	logging.AssistDebug("generateCode: lang=%s type=%d comment=%q", profile.LanguageID, genType, comment)

	raw, err := a.call(ctx, prompt.KindGenerate, prompt.Data{
		Language:       profile.LanguageID,
		Before:         cc.Before,
		After:          cc.After,
		Comment:        profile.FormatComment(comment),
		GenerationType: genType.String(),
	}, nil)
	if err != nil {
		return editor.Edit{}, err
	}

	code := postprocess.StripFences(raw)
	if strings.TrimSpace(code) == "" {
		logging.AssistWarn("generateCode: empty output for %q", comment)
		return editor.Edit{}, ErrEmptyOutput
	}
	logging.Assist("generateCode: %d chars at line %d", len(code), pos.Line+1)
	return editor.Edit{Position: doc.Validate(pos), Text: code}, nil
}
