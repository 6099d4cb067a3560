package chatbot

import (
	"strings"
	"unicode"
)

// Normalize lowercases text, drops punctuation and collapses whitespace.
// Word runes (letters, marks, digits, underscore) survive so non-Latin
// scripts are kept intact.
func Normalize(text string) string {
	lowered := strings.ToLower(text)
	var builder strings.Builder
	builder.Grow(len(lowered))
	lastSpace := true
	for _, r := range lowered {
		switch {
		case isWordRune(r):
			builder.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				builder.WriteRune(' ')
				lastSpace = true
			}
		}
		// anything else is punctuation or a symbol and is removed outright
	}
	return strings.TrimRight(builder.String(), " ")
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// tokenSet returns the unique whitespace-delimited tokens of normalized text.
func tokenSet(normalized string) map[string]struct{} {
	fields := strings.Fields(normalized)
	set := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		set[field] = struct{}{}
	}
	return set
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
