package vectorize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/labelmap/core"
)

func testEntries() []*core.CatalogEntry {
	return []*core.CatalogEntry{
		{Code: "J30.1", Description: "Allergic rhinitis due to pollen", Category: "Vasomotor and allergic rhinitis"},
		{Code: "R51", Description: "Headache", Category: "Headache"},
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"allergic", "rhinitis", "due", "to", "pollen"},
		Tokenize("Allergic rhinitis, due to pollen!"))
	assert.Equal(t, []string{"type", "diabetes"}, Tokenize("Type 2 diabetes"))
	assert.Empty(t, Tokenize(" . , "))
}

func TestAnalyzer_NGramsAfterStopWords(t *testing.T) {
	a := analyzer{minN: 1, maxN: 3, stopWords: true}
	got := a.terms("Allergic rhinitis due to pollen")
	assert.Equal(t, []string{
		"allergic", "rhinitis", "pollen",
		"allergic rhinitis", "rhinitis pollen",
		"allergic rhinitis pollen",
	}, got)
}

func TestNewCatalog(t *testing.T) {
	c, err := NewCatalog(testEntries())
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 7, c.Features())
	assert.Equal(t, "J30.1", c.Entry(0).Code)

	for i := 0; i < c.Len(); i++ {
		assert.InDelta(t, 1.0, c.Vector(i).Norm(), 1e-9, "entry %d should be unit length", i)
	}
}

func TestNewCatalog_InitializationFailures(t *testing.T) {
	t.Run("empty catalog", func(t *testing.T) {
		_, err := NewCatalog(nil)
		assert.ErrorIs(t, err, core.ErrInitialization)
		assert.ErrorIs(t, err, core.ErrEmptyCatalog)
	})

	t.Run("duplicate code", func(t *testing.T) {
		entries := append(testEntries(), &core.CatalogEntry{Code: "R51", Description: "Head pain"})
		_, err := NewCatalog(entries)
		assert.ErrorIs(t, err, core.ErrInitialization)
		assert.ErrorIs(t, err, core.ErrDuplicateCode)
	})

	t.Run("only stopwords", func(t *testing.T) {
		_, err := NewCatalog([]*core.CatalogEntry{{Code: "X1", Description: "the and of"}})
		assert.ErrorIs(t, err, ErrEmptyVocabulary)
	})

	t.Run("bad option", func(t *testing.T) {
		_, err := NewCatalog(testEntries(), WithNGramRange(2, 1))
		assert.ErrorIs(t, err, ErrInvalidOption)
	})
}

func TestCatalog_MaxFeatures(t *testing.T) {
	entries := []*core.CatalogEntry{
		{Code: "A", Description: "fever fever cough"},
		{Code: "B", Description: "fever rash"},
	}
	c, err := NewCatalog(entries, WithNGramRange(1, 1), WithMaxFeatures(2))
	require.NoError(t, err)

	// fever (3) is kept, cough and rash tie at 1 and break alphabetically
	assert.Equal(t, 2, c.Features())
	assert.False(t, c.Vectorize("cough").IsZero())
	assert.True(t, c.Vectorize("rash").IsZero())
}

func TestCatalog_SmoothedIDF(t *testing.T) {
	entries := []*core.CatalogEntry{
		{Code: "A", Description: "fever cough"},
		{Code: "B", Description: "fever"},
	}
	c, err := NewCatalog(entries, WithNGramRange(1, 1))
	require.NoError(t, err)

	// fever: df=2 -> idf 1; cough: df=1 -> ln(3/2)+1
	coughIDF := math.Log(3.0/2.0) + 1
	want := 1 / math.Sqrt(1+coughIDF*coughIDF)
	v := c.Vector(0)
	require.Len(t, v.Values, 2)
	// vocabulary is sorted, so cough is index 0 and fever index 1
	assert.InDelta(t, coughIDF*want, v.Values[0], 1e-9)
	assert.InDelta(t, want, v.Values[1], 1e-9)
}

func TestCatalog_VectorizeDropsUnknownTerms(t *testing.T) {
	c, err := NewCatalog(testEntries())
	require.NoError(t, err)

	v := c.Vectorize("zebra xylophone")
	assert.True(t, v.IsZero())

	scores := c.Scores(v)
	assert.Equal(t, []float64{0, 0}, scores)

	v = c.Vectorize("headache zebra")
	scores = c.Scores(v)
	assert.InDelta(t, 0.0, scores[0], 1e-9)
	assert.InDelta(t, 1.0, scores[1], 1e-9)
}
