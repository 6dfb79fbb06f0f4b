// Package lang maps file extensions to comment syntax and finds the last
// comment in a document that does not yet have a matching implementation.
package lang

import (
	"path/filepath"
	"strings"
)

// Delimiters are the opening and closing tokens of a block comment.
type Delimiters struct {
	Start string
	End   string
}

// Profile describes a language's comment syntax.
// The zero Profile means the extension is unknown.
type Profile struct {
	LanguageID  string
	CommentType string      // single-line comment token, may be empty
	MultiLine   *Delimiters // nil when the language has no block comments
}

// Known reports whether the profile came from the extension table.
func (p Profile) Known() bool {
	return p.LanguageID != ""
}

// FormatComment renders comment the way the language writes it: inside block
// delimiters when it has them, otherwise behind the single-line token.
func (p Profile) FormatComment(comment string) string {
	if p.MultiLine != nil {
		return p.MultiLine.Start + "\n" + comment + "\n" + p.MultiLine.End
	}
	return p.CommentType + " " + comment
}

var profiles = map[string]Profile{
	"py":   {"python", "#", &Delimiters{`"""`, `"""`}},
	"js":   {"javascript", "//", &Delimiters{"/*", "*/"}},
	"ts":   {"typescript", "//", &Delimiters{"/**", "*/"}},
	"java": {"java", "//", &Delimiters{"/**", "*/"}},
	"c":    {"c", "//", &Delimiters{"/*", "*/"}},
	"cpp":  {"cpp", "//", &Delimiters{"/*", "*/"}},
	"cs":   {"csharp", "//", &Delimiters{"/*", "*/"}},
	"go":   {"go", "//", &Delimiters{"/*", "*/"}},
	"rs":   {"rust", "//", &Delimiters{"/*", "*/"}},
	"html": {"html", "<!--", &Delimiters{"<!--", "-->"}},
	"css":  {"css", "/*", &Delimiters{"/*", "*/"}},
	"json": {"json", "", nil},
	"xml":  {"xml", "<!--", &Delimiters{"<!--", "-->"}},
	"sql":  {"sql", "--", &Delimiters{"/*", "*/"}},
	"sh":   {"bash", "#", nil},
}

// Detect returns the profile for a file extension such as "py" or ".py".
// Unknown extensions yield the zero Profile.
func Detect(ext string) Profile {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	p, ok := profiles[ext]
	if !ok {
		return Profile{}
	}
	// Callers get their own delimiters so the table stays immutable.
	if p.MultiLine != nil {
		d := *p.MultiLine
		p.MultiLine = &d
	}
	return p
}

// DetectPath returns the profile for the extension of path.
func DetectPath(path string) Profile {
	return Detect(filepath.Ext(path))
}

// Extensions lists the supported file extensions.
func Extensions() []string {
	exts := make([]string, 0, len(profiles))
	for ext := range profiles {
		exts = append(exts, ext)
	}
	return exts
}
