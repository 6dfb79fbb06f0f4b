package prompt

import "regexp"

// GenerationType is the output shape requested by a comment.
type GenerationType int

const (
	GenerateAuto GenerationType = iota
	GenerateFunction
	GenerateSnippet
)

// Keywords are matched case-insensitively, in English and French.
var (
	functionKeywords = regexp.MustCompile(`(?i)\b(fonction|méthode|implémenter|classe|créer|définir|constructor|function|method|class|define|implement)\b`)
	snippetKeywords  = regexp.MustCompile(`(?i)\b(bloc|exemple|snippet|code|assigner|calculer|trier|afficher|vérifier|example|sort|display|check)\b`)
)

// ClassifyRequest picks the generation type for a comment. Function keywords
// win over snippet keywords.
func ClassifyRequest(comment string) GenerationType {
	switch {
	case functionKeywords.MatchString(comment):
		return GenerateFunction
	case snippetKeywords.MatchString(comment):
		return GenerateSnippet
	default:
		return GenerateAuto
	}
}

// String is the phrase inserted into the generation prompt.
func (g GenerationType) String() string {
	switch g {
	case GenerateFunction:
		return "well-structured function or class with proper documentation"
	case GenerateSnippet:
		return "clean and optimized code snippet"
	default:
		return "code, in the best output format for the request"
	}
}
