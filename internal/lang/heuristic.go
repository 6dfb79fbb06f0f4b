package lang

import (
	"regexp"
	"strings"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9\s\p{Zs}]`)
	whitespace   = regexp.MustCompile(`[\s\p{Zs}]+`)
)

// FunctionNameFromComment turns a comment into the identifier a matching
// function would probably have: lower case, punctuation and non-ASCII letters
// dropped, whitespace runs joined with underscores.
func FunctionNameFromComment(comment string) string {
	name := strings.ToLower(comment)
	name = nonSlugChars.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	return whitespace.ReplaceAllString(name, "_")
}

// declarationPatterns use %[1]s as the function-name placeholder.
var declarationPatterns = map[string]string{
	"python":     `def\s+%[1]s\s*\(`,
	"javascript": `function\s+%[1]s\s*\(|const\s+%[1]s\s*=\s*\(.*?\)\s*=>`,
	"typescript": `function\s+%[1]s\s*\(|const\s+%[1]s\s*=\s*\(.*?\)\s*=>`,
	"java":       `public\s+\w+\s+%[1]s\s*\(`,
	"c":          `\w+\s+%[1]s\s*\(`,
	"cpp":        `\w+\s+%[1]s\s*\(`,
	"rust":       `fn\s+%[1]s\s*\(`,
	"go":         `func\s+%[1]s\s*\(`,
	"bash":       `function\s+%[1]s\s*\{`,
}

// DeclarationPattern returns the regexp matching a declaration of name in
// languageID. Languages without an entry use the Python pattern.
func DeclarationPattern(languageID, name string) *regexp.Regexp {
	pattern, ok := declarationPatterns[languageID]
	if !ok {
		pattern = declarationPatterns["python"]
	}
	return regexp.MustCompile(strings.ReplaceAll(pattern, "%[1]s", regexp.QuoteMeta(name)))
}

// IsFunctionImplemented reports whether text already declares a function
// named after comment. A comment that slugs to nothing is never implemented.
func IsFunctionImplemented(text, comment, languageID string) bool {
	name := FunctionNameFromComment(comment)
	if name == "" {
		return false
	}
	return DeclarationPattern(languageID, name).MatchString(text)
}
