package vectorize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenize lowercases text and splits it into word tokens of at least two
// characters. Word characters are letters, digits and underscore.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isWordRune(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// analyzer turns raw text into the n-gram terms counted by the vectorizer.
type analyzer struct {
	minN, maxN int
	stopWords  bool
}

// terms returns every n-gram of length minN..maxN formed after stopword
// removal, in text order.
func (a analyzer) terms(text string) []string {
	tokens := Tokenize(text)
	if a.stopWords {
		kept := tokens[:0]
		for _, t := range tokens {
			if !IsStopWord(t) {
				kept = append(kept, t)
			}
		}
		tokens = kept
	}

	var out []string
	if a.minN == 1 {
		out = append(out, tokens...)
	}
	start := a.minN
	if start < 2 {
		start = 2
	}
	for n := start; n <= a.maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}
