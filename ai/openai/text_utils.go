package openai

import "strings"

// scrubString replaces common punctuation with spaces and collapses whitespace.
func scrubString(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(".,!?;:\"'()[]{}—–-/", r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
