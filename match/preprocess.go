package match

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"golang.org/x/text/unicode/norm"

	"github.com/poiesic/labelmap/vectorize"
)

// Lemmatizer reduces a lowercase word to its dictionary form.
type Lemmatizer interface {
	Lemma(word string) string
}

// identity leaves words unchanged.
type identity struct{}

func (identity) Lemma(word string) string { return word }

var (
	englishOnce       sync.Once
	englishLemmatizer *golem.Lemmatizer
	englishErr        error
)

// EnglishLemmatizer returns the shared English dictionary lemmatizer.
// The dictionary is loaded on first use.
func EnglishLemmatizer() (Lemmatizer, error) {
	englishOnce.Do(func() {
		englishLemmatizer, englishErr = golem.New(en.New())
		if englishErr != nil {
			englishErr = fmt.Errorf("failed to load english lemmatizer: %w", englishErr)
		}
	})
	if englishErr != nil {
		return nil, englishErr
	}
	return englishLemmatizer, nil
}

// Preprocessor normalizes indication text before matching: NFKC
// normalization, lowercasing, punctuation and stopword removal, then
// lemmatization of the remaining words.
type Preprocessor struct {
	lemmatizer Lemmatizer
}

// NewPreprocessor creates a preprocessor. A nil lemmatizer leaves words as-is.
func NewPreprocessor(lemmatizer Lemmatizer) *Preprocessor {
	if lemmatizer == nil {
		lemmatizer = identity{}
	}
	return &Preprocessor{lemmatizer: lemmatizer}
}

// Process returns the normalized words of text joined by single spaces.
func (p *Preprocessor) Process(text string) string {
	text = strings.ToLower(norm.NFKC.String(text))
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	out := words[:0]
	for _, w := range words {
		if vectorize.IsStopWord(w) {
			continue
		}
		if lemma := strings.ToLower(p.lemmatizer.Lemma(w)); lemma != "" {
			out = append(out, lemma)
		}
	}
	return strings.Join(out, " ")
}
