package fixer

import (
	"strings"
	"unicode"

	"exportlint/internal/engine/parser"
)

// CaseConvention names the supported identifier styles.
type CaseConvention string

const (
	CaseCamel  CaseConvention = "camelCase"
	CasePascal CaseConvention = "PascalCase"
	CaseSnake  CaseConvention = "snake_case"
	CaseKebab  CaseConvention = "kebab-case"
)

// conventionFor maps an export's category to its target case style.
func conventionFor(kind parser.ExportKind) CaseConvention {
	switch kind {
	case parser.KindConstant:
		return CaseSnake
	case parser.KindFunction:
		return CaseCamel
	}
	// interface, type, class, component
	return CasePascal
}

// splitWords breaks an identifier into lowercase words on underscores,
// hyphens and lower-to-upper case boundaries.
func splitWords(name string) []string {
	var words []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			words = append(words, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
		case unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) ||
			(i+1 < len(runes) && unicode.IsLower(runes[i+1]))):
			flush()
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return words
}

// ConvertCase rewrites an identifier into the target convention.
func ConvertCase(name string, convention CaseConvention) string {
	words := splitWords(name)
	if len(words) == 0 {
		return name
	}

	switch convention {
	case CaseCamel:
		out := words[0]
		for _, w := range words[1:] {
			out += title(w)
		}
		return out
	case CasePascal:
		var out string
		for _, w := range words {
			out += title(w)
		}
		return out
	case CaseSnake:
		return strings.ToUpper(strings.Join(words, "_"))
	case CaseKebab:
		return strings.Join(words, "-")
	}
	return name
}

func title(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
