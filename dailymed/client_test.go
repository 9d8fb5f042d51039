package dailymed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/labelmap/core"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL + "/services/v2"
	cfg.LabelURL = srv.URL + "/fda"
	cfg.Timeout = 5 * time.Second
	cfg.RetryDelay = time.Millisecond
	client, err := NewClient(cfg)
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative base", func(c *Config) { c.BaseURL = "/services" }},
		{"ftp label", func(c *Config) { c.LabelURL = "ftp://example.com" }},
		{"no retries", func(c *Config) { c.MaxRetries = 0 }},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			_, err := NewClient(cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	assert.NoError(t, DefaultConfig().Validate())
}

func TestSearchSPLs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/services/v2/spls.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "claritin", r.URL.Query().Get("drug_name"))
		assert.Equal(t, "100", r.URL.Query().Get("pagesize"))
		writeJSON(w, `{"data":[
			{"spl_version":3,"published_date":"Jan 02, 2025","title":"CLARITIN- loratadine tablet","setid":"set-new"},
			{"spl_version":1,"published_date":"Mar 01, 2019","title":"CLARITIN","setid":"set-old"},
			{"title":"no set id"}
		],"metadata":{"total_elements":3}}`)
	})
	client := newTestClient(t, mux)
	ctx := context.Background()

	spls, err := client.SearchSPLs(ctx, "  claritin ")
	require.NoError(t, err)
	require.Len(t, spls, 2)
	assert.Equal(t, core.SPLSummary{SetID: "set-new", Title: "CLARITIN- loratadine tablet", PublishedDate: "Jan 02, 2025"}, spls[0])

	latest, err := client.LatestSPL(ctx, "claritin")
	require.NoError(t, err)
	assert.Equal(t, "set-new", latest.SetID)

	_, err = client.SearchSPLs(ctx, " ")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestLatestSPL_NoResults(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"data":[],"metadata":{}}`)
	}))

	_, err := client.LatestSPL(context.Background(), "unobtainium")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDrugNames(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/services/v2/drugnames.json", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		writeJSON(w, `{"data":[{"drug_name":"ADVIL"},{"drug_name":" "},{"drug_name":"ZYRTEC"}],
			"metadata":{"total_pages":"7","current_page":2}}`)
	}))

	page, err := client.DrugNames(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"ADVIL", "ZYRTEC"}, page.Names)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 7, page.TotalPages)
}

func TestSPLDocumentAndLabelHTML(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/services/v2/spls/abc-123.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<document/>`))
	})
	mux.HandleFunc("/fda/fdaDrugXsl.cfm", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc-123", r.URL.Query().Get("setid"))
		_, _ = w.Write([]byte(`<html></html>`))
	})
	client := newTestClient(t, mux)
	ctx := context.Background()

	doc, err := client.SPLDocument(ctx, "abc-123")
	require.NoError(t, err)
	assert.Equal(t, `<document/>`, string(doc))

	page, err := client.LabelHTML(ctx, "abc-123")
	require.NoError(t, err)
	assert.Equal(t, `<html></html>`, string(page))

	_, err = client.SPLDocument(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGet_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`<document/>`))
	}))

	doc, err := client.SPLDocument(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, `<document/>`, string(doc))
	assert.Equal(t, int32(3), calls.Load())
}

func TestGet_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := client.SPLDocument(context.Background(), "abc")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGet_ClientErrorsNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := client.SPLDocument(context.Background(), "abc")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGet_ContextCanceled(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.SPLDocument(ctx, "abc")
	assert.ErrorIs(t, err, context.Canceled)
}
