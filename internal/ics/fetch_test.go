package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchOne_CachesAndRevalidates(t *testing.T) {
	const etag = `"v1"`
	hits := 0

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
		_, _ = w.Write([]byte(sampleICS))
	}))
	defer ts.Close()

	f := NewFetcher(t.TempDir(), 0)
	src := Source{ID: "work", URL: ts.URL}

	res, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, []byte(sampleICS), res.Body)

	// Second fetch revalidates and reuses the cached body.
	res, err = f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Equal(t, []byte(sampleICS), res.Body)
	assert.Equal(t, 2, hits)
}

func TestFetchOne_ServesStaleOnError(t *testing.T) {
	fail := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(sampleICS))
	}))
	defer ts.Close()

	f := NewFetcher(t.TempDir(), 0)
	src := Source{ID: "work", URL: ts.URL}

	_, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)

	fail = true
	res, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err, "cached body must cover a failing upstream")
	assert.True(t, res.FromCache)
	assert.Equal(t, []byte(sampleICS), res.Body)
}

func TestFetchOne_EmptyURL(t *testing.T) {
	f := NewFetcher(t.TempDir(), 0)
	_, err := f.FetchOne(context.Background(), Source{ID: "x"})
	assert.Error(t, err)
}

func TestFetchAll_CollectsPerSourceErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleICS))
	}))
	defer ts.Close()

	f := NewFetcher(t.TempDir(), 0)
	results, errs := f.FetchAll(context.Background(), []Source{
		{ID: "good", URL: ts.URL},
		{ID: "bad", URL: ""},
	})

	assert.Len(t, results, 1)
	assert.Len(t, errs, 1)
}
