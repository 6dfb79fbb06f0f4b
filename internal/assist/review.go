package assist

import (
	"context"
	"strings"

	"fastcoding/internal/diff"
	"fastcoding/internal/editor"
	"fastcoding/internal/lang"
	"fastcoding/internal/logging"
	"fastcoding/internal/postprocess"
	"fastcoding/internal/prompt"
)

// ReviewResult is a split review plus the markdown shown in the chat panel.
type ReviewResult struct {
	Review   string `json:"review"`
	Code     string `json:"code"`
	Markdown string `json:"markdown"`
	Diff     string `json:"diff,omitempty"` // unified diff from the selection to Code
}

// ReviewCode reviews the selected text.
func (a *Assistant) ReviewCode(ctx context.Context, doc *editor.Document, sel editor.Range) (ReviewResult, error) {
	selected := strings.TrimSpace(doc.GetText(sel))
	if selected == "" {
		return ReviewResult{}, ErrEmptySelection
	}

	language := lang.Detect(doc.Extension()).LanguageID
	if language == "" {
		language = "python"
	}

	raw, err := a.call(ctx, prompt.KindReview, prompt.Data{Language: language, Selection: selected}, nil)
	if err != nil {
		return ReviewResult{}, err
	}

	review := postprocess.SplitReview(raw)
	if review.Code != "" {
		review.Code = postprocess.FixPythonDocstring(review.Code)
	}
	if review.Empty() {
		logging.AssistWarn("reviewCode: empty output")
		return ReviewResult{}, ErrEmptyOutput
	}
	res := ReviewResult{Review: review.Review, Code: review.Code, Markdown: ReviewMarkdown(review, language)}
	if review.Code != "" {
		res.Diff = diff.Unified("selection", "suggestion", selected, review.Code)
	}
	return res, nil
}

// ReviewMarkdown renders a review for the chat panel.
func ReviewMarkdown(r postprocess.Review, language string) string {
	var parts []string
	if r.Review != "" {
		parts = append(parts, "### Code review\n\n"+r.Review)
	}
	if r.Code != "" {
		parts = append(parts, "### Suggested code\n\n```"+language+"\n"+r.Code+"\n```")
	}
	return strings.Join(parts, "\n\n")
}
