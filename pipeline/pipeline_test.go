package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/labelmap/core"
	"github.com/poiesic/labelmap/dailymed"
	"github.com/poiesic/labelmap/match"
	"github.com/poiesic/labelmap/storage"
	"github.com/poiesic/labelmap/storage/badger"
)

const indicationsXML = `<?xml version="1.0" encoding="UTF-8"?>
<document xmlns="urn:hl7-org:v3"><component><structuredBody>
  <component><section>
    <code code="34067-9"/>
    <text><paragraph>For the relief of %s.</paragraph></text>
  </section></component>
  <component><section>
    <code code="34068-7"/>
    <text><paragraph>Take one tablet daily.</paragraph></text>
  </section></component>
</structuredBody></component></document>`

const directionsOnlyXML = `<?xml version="1.0" encoding="UTF-8"?>
<document xmlns="urn:hl7-org:v3"><component><structuredBody>
  <component><section>
    <code code="34068-7"/>
    <text><paragraph>Apply twice daily.</paragraph></text>
  </section></component>
</structuredBody></component></document>`

// fakeSource serves canned documents keyed by lowercased drug name.
type fakeSource struct {
	docs   map[string]string
	html   map[string]string
	names  []string
	fail   error
	splHit atomic.Int32
}

func (f *fakeSource) DrugNames(ctx context.Context, page int) (*dailymed.DrugNamesPage, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	return &dailymed.DrugNamesPage{Names: f.names, Page: page, TotalPages: 1}, nil
}

func (f *fakeSource) LatestSPL(ctx context.Context, name string) (*core.SPLSummary, error) {
	f.splHit.Add(1)
	if f.fail != nil {
		return nil, f.fail
	}
	key := strings.ToLower(name)
	if _, ok := f.docs[key]; !ok {
		return nil, dailymed.ErrNotFound
	}
	return &core.SPLSummary{SetID: "set-" + key, Title: strings.ToUpper(key) + " TABLETS"}, nil
}

func (f *fakeSource) SPLDocument(ctx context.Context, setID string) ([]byte, error) {
	return []byte(f.docs[strings.TrimPrefix(setID, "set-")]), nil
}

func (f *fakeSource) LabelHTML(ctx context.Context, setID string) ([]byte, error) {
	page, ok := f.html[strings.TrimPrefix(setID, "set-")]
	if !ok {
		return nil, dailymed.ErrNotFound
	}
	return []byte(page), nil
}

// fakeMapper maps any text mentioning "pain" to R52.
type fakeMapper struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (m *fakeMapper) MapIndication(ctx context.Context, text string) (*core.IndicationMapping, error) {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if !strings.Contains(text, "pain") {
		return nil, nil
	}
	return &core.IndicationMapping{
		OriginalText: text,
		Matches:      []core.MatchResult{{Code: "R52", Description: "Pain, unspecified", Score: 0.8}},
	}, nil
}

func newTestLabels(t *testing.T) storage.LabelRepository {
	t.Helper()
	catalogRepo, labelRepo, backend, err := badger.NewMemoryRepositories(time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() {
		labelRepo.Close()
		catalogRepo.Close()
		backend.Close()
	})
	return labelRepo
}

func newTestPipeline(t *testing.T, source LabelSource, mapper Mapper, opts ...Option) (*Pipeline, storage.LabelRepository) {
	t.Helper()
	labels := newTestLabels(t)
	p, err := NewPipeline(labels, source, mapper, opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p, labels
}

func TestNewPipeline_Validation(t *testing.T) {
	labels := newTestLabels(t)
	source := &fakeSource{}
	mapper := &fakeMapper{}

	_, err := NewPipeline(nil, source, mapper)
	assert.ErrorIs(t, err, ErrLabelRepositoryRequired)

	_, err = NewPipeline(labels, nil, mapper)
	assert.ErrorIs(t, err, ErrSourceRequired)

	_, err = NewPipeline(labels, source, nil)
	assert.ErrorIs(t, err, ErrMapperRequired)

	p, err := NewPipeline(labels, source, mapper, WithPoolSize(0), WithLogger(nil))
	require.NoError(t, err)
	assert.Equal(t, 1, p.pool.Cap())
	p.Release()
}

func TestProcess_MapsAndCaches(t *testing.T) {
	source := &fakeSource{docs: map[string]string{"aspirin": fmt.Sprintf(indicationsXML, "minor pain")}}
	mapper := &fakeMapper{}
	p, labels := newTestPipeline(t, source, mapper)
	ctx := context.Background()

	label, err := p.Process(ctx, "Aspirin")
	require.NoError(t, err)
	assert.Equal(t, "Aspirin", label.Drug)
	assert.Equal(t, "set-aspirin", label.SetID)
	assert.Equal(t, core.ExtractedText{"For the relief of minor pain."}, label.Indications)
	assert.Equal(t, "Take one tablet daily.", label.Directions)
	require.NotNil(t, label.Mapping)
	assert.Equal(t, "R52", label.Mapping.Matches[0].Code)

	cached, err := labels.GetLabel(ctx, "aspirin")
	require.NoError(t, err)
	assert.Equal(t, label.SetID, cached.SetID)

	// second call is served from the cache
	_, err = p.Process(ctx, "ASPIRIN")
	require.NoError(t, err)
	assert.Equal(t, int32(1), source.splHit.Load())
	assert.Len(t, mapper.texts, 1)
}

func TestProcess_NoMappingIsStillCached(t *testing.T) {
	source := &fakeSource{docs: map[string]string{"lotion": fmt.Sprintf(indicationsXML, "dry skin")}}
	p, labels := newTestPipeline(t, source, &fakeMapper{})

	label, err := p.Process(context.Background(), "lotion")
	require.NoError(t, err)
	assert.Nil(t, label.Mapping)

	_, err = labels.GetLabel(context.Background(), "lotion")
	assert.NoError(t, err)
}

func TestProcess_EmptyQueryIsNotAnError(t *testing.T) {
	source := &fakeSource{docs: map[string]string{"x": fmt.Sprintf(indicationsXML, "x")}}
	p, _ := newTestPipeline(t, source, &fakeMapper{err: match.ErrEmptyQuery})

	label, err := p.Process(context.Background(), "x")
	require.NoError(t, err)
	assert.Nil(t, label.Mapping)
}

func TestProcess_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty drug name", func(t *testing.T) {
		p, _ := newTestPipeline(t, &fakeSource{}, &fakeMapper{})
		_, err := p.Process(ctx, "  ")
		assert.ErrorIs(t, err, core.ErrEmptyDrugName)
	})

	t.Run("unknown drug", func(t *testing.T) {
		p, _ := newTestPipeline(t, &fakeSource{docs: map[string]string{}}, &fakeMapper{})
		_, err := p.Process(ctx, "nothing")
		assert.ErrorIs(t, err, ErrLabelNotFound)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("source failure", func(t *testing.T) {
		boom := errors.New("boom")
		p, _ := newTestPipeline(t, &fakeSource{fail: boom}, &fakeMapper{})
		_, err := p.Process(ctx, "aspirin")
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrLabelNotFound)
	})

	t.Run("no indications is not cached", func(t *testing.T) {
		source := &fakeSource{docs: map[string]string{"cream": directionsOnlyXML}}
		p, labels := newTestPipeline(t, source, &fakeMapper{}, WithHTMLFallback(false))
		_, err := p.Process(ctx, "cream")
		assert.ErrorIs(t, err, ErrNoIndications)

		_, err = labels.GetLabel(ctx, "cream")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("mapper failure", func(t *testing.T) {
		boom := errors.New("engine down")
		source := &fakeSource{docs: map[string]string{"aspirin": fmt.Sprintf(indicationsXML, "pain")}}
		p, _ := newTestPipeline(t, source, &fakeMapper{err: boom})
		_, err := p.Process(ctx, "aspirin")
		assert.ErrorIs(t, err, boom)
	})
}

func TestProcess_HTMLFallback(t *testing.T) {
	source := &fakeSource{
		docs: map[string]string{"cream": directionsOnlyXML},
		html: map[string]string{"cream": `<div data-sectioncode="34067-9"><div>Relieves joint pain</div></div>`},
	}
	p, _ := newTestPipeline(t, source, &fakeMapper{})

	label, err := p.Process(context.Background(), "cream")
	require.NoError(t, err)
	assert.Equal(t, core.ExtractedText{"Relieves joint pain"}, label.Indications)
	assert.Equal(t, "Apply twice daily.", label.Directions)
	require.NotNil(t, label.Mapping)
}

func TestProcessAll_PreservesOrder(t *testing.T) {
	source := &fakeSource{docs: map[string]string{
		"a": fmt.Sprintf(indicationsXML, "pain"),
		"b": fmt.Sprintf(indicationsXML, "cough"),
		"c": fmt.Sprintf(indicationsXML, "back pain"),
	}}
	p, _ := newTestPipeline(t, source, &fakeMapper{}, WithPoolSize(3))

	results := p.ProcessAll(context.Background(), []string{"c", "missing", "a", "b"})
	require.Len(t, results, 4)

	assert.Equal(t, "c", results[0].Drug)
	require.NoError(t, results[0].Err)
	assert.NotNil(t, results[0].Mapping.Mapping)

	assert.Equal(t, "missing", results[1].Drug)
	assert.ErrorIs(t, results[1].Err, ErrLabelNotFound)

	assert.Equal(t, "a", results[2].Drug)
	assert.NoError(t, results[2].Err)

	assert.Equal(t, "b", results[3].Drug)
	require.NoError(t, results[3].Err)
	assert.Nil(t, results[3].Mapping.Mapping)
}

func TestProcessAll_CanceledContext(t *testing.T) {
	source := &fakeSource{docs: map[string]string{"a": fmt.Sprintf(indicationsXML, "pain")}}
	p, _ := newTestPipeline(t, source, &fakeMapper{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := p.ProcessAll(ctx, []string{"a"})
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestProcessPage(t *testing.T) {
	source := &fakeSource{
		names: []string{"a", "b"},
		docs: map[string]string{
			"a": fmt.Sprintf(indicationsXML, "pain"),
			"b": fmt.Sprintf(indicationsXML, "fever"),
		},
	}
	p, _ := newTestPipeline(t, source, &fakeMapper{})

	results, err := p.ProcessPage(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Drug)
	assert.Equal(t, "b", results[1].Drug)

	source.fail = errors.New("listing down")
	_, err = p.ProcessPage(context.Background(), 2)
	assert.Error(t, err)
}
