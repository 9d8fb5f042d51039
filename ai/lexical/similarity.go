package lexical

import (
	"context"
	"strings"
	"unicode"

	"github.com/xrash/smetrics"

	"github.com/poiesic/labelmap/ai"
	"github.com/poiesic/labelmap/vectorize"
)

const (
	// DefaultTokenThreshold is the Jaro-Winkler score at which two tokens
	// are treated as the same word.
	DefaultTokenThreshold = 0.92

	jwBoostThreshold = 0.7
	jwPrefixSize     = 4
)

// Similarity scores a phrase against a reference string by how many of the
// reference's content words appear in the phrase, allowing small spelling
// differences. Comparing "seasonal allergy symptom" with "allergy" scores 1;
// with "pollen allergy" it scores 0.5.
type Similarity struct {
	tokenThreshold float64
}

var _ ai.Similarity = (*Similarity)(nil)

// Option configures a Similarity.
type Option func(*Similarity)

// WithTokenThreshold sets the per-token Jaro-Winkler threshold.
func WithTokenThreshold(t float64) Option {
	return func(s *Similarity) {
		s.tokenThreshold = t
	}
}

// New creates a lexical similarity.
func New(opts ...Option) *Similarity {
	s := &Similarity{tokenThreshold: DefaultTokenThreshold}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Similarity implements ai.Similarity. The score is the fraction of b's
// content words matched by some word of a.
func (s *Similarity) Similarity(_ context.Context, a, b string) (float32, error) {
	phrase := contentWords(a)
	ref := contentWords(b)
	if len(phrase) == 0 || len(ref) == 0 {
		return 0, nil
	}

	matched := 0
	for _, r := range ref {
		for _, p := range phrase {
			if r == p || smetrics.JaroWinkler(r, p, jwBoostThreshold, jwPrefixSize) >= s.tokenThreshold {
				matched++
				break
			}
		}
	}
	return float32(matched) / float32(len(ref)), nil
}

func contentWords(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	words := fields[:0]
	for _, f := range fields {
		if !vectorize.IsStopWord(f) {
			words = append(words, f)
		}
	}
	return words
}
