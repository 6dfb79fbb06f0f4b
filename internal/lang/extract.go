package lang

import (
	"regexp"
	"strings"

	"fastcoding/internal/logging"
)

// ExtractLastUnresolvedComment returns the last comment in text whose
// function name has no declaration in text yet.
//
// Single-line comments are scanned first and block comments second, so a
// qualifying block comment always wins over a single-line comment even when
// the single-line comment appears later in the file.
func ExtractLastUnresolvedComment(text string, p Profile) (string, bool) {
	var last string
	found := false

	if p.CommentType != "" {
		re := regexp.MustCompile(regexp.QuoteMeta(p.CommentType) + `\s*(.*)`)
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			comment := strings.TrimSpace(m[1])
			if comment != "" && !IsFunctionImplemented(text, comment, p.LanguageID) {
				last, found = comment, true
			}
		}
	}

	if p.MultiLine != nil {
		start := regexp.QuoteMeta(p.MultiLine.Start)
		end := regexp.QuoteMeta(p.MultiLine.End)
		re := regexp.MustCompile(start + `[\s\S]*?` + end)
		for _, m := range re.FindAllString(text, -1) {
			comment := strings.TrimPrefix(m, p.MultiLine.Start)
			comment = strings.TrimSuffix(comment, p.MultiLine.End)
			comment = strings.TrimSpace(comment)
			if comment != "" && !IsFunctionImplemented(text, comment, p.LanguageID) {
				last, found = comment, true
			}
		}
	}

	if found {
		logging.LangDebug("unresolved %s comment: %q", p.LanguageID, last)
	}
	return last, found
}
