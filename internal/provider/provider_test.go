package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oldtraffrod/tiktok-videogenerator/internal/config"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/model"
)

func TestPixabaySearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "sunset", r.URL.Query().Get("q"))
		assert.Equal(t, "vertical", r.URL.Query().Get("orientation"))
		w.Write([]byte(`{"hits":[{"id":42,"previewURL":"p","webformatURL":"m","largeImageURL":"l","webformatWidth":640,"webformatHeight":1138}]}`))
	}))
	defer server.Close()

	client := NewPixabayClient(&config.PixabayConfig{BaseURL: server.URL, APIKey: "test-key"})
	require.True(t, client.IsConfigured())

	items, err := client.Search(context.Background(), "sunset", 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "42", items[0].ID)
	assert.Equal(t, model.SourcePixabay, items[0].Source)
	assert.Equal(t, "p", items[0].PreviewURL)
	assert.Equal(t, "l", items[0].LargeURL)
	assert.Equal(t, 640, items[0].Width)
}

func TestPexelsSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		assert.Equal(t, "pexels-key", r.Header.Get("Authorization"))
		assert.Equal(t, "portrait", r.URL.Query().Get("orientation"))
		w.Write([]byte(`{"photos":[{"id":7,"width":800,"height":1422,"src":{"tiny":"t","medium":"m","large":"l"}}]}`))
	}))
	defer server.Close()

	client := NewPexelsClient(&config.PexelsConfig{BaseURL: server.URL, APIKey: "pexels-key"})

	items, err := client.Search(context.Background(), "forest", 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "7", items[0].ID)
	assert.Equal(t, model.SourcePexels, items[0].Source)
	assert.Equal(t, "m", items[0].MediumURL)
}

func TestUnsplashSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/photos", r.URL.Path)
		assert.Equal(t, "Client-ID unsplash-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"results":[{"id":"abc","width":900,"height":1600,"urls":{"thumb":"t","small":"s","regular":"r"}}]}`))
	}))
	defer server.Close()

	client := NewUnsplashClient(&config.UnsplashConfig{BaseURL: server.URL, AccessKey: "unsplash-key"})

	items, err := client.Search(context.Background(), "city", 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "abc", items[0].ID)
	assert.Equal(t, model.SourceUnsplash, items[0].Source)
	assert.Equal(t, "r", items[0].LargeURL)
}

func TestProviderErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer server.Close()

	client := NewPixabayClient(&config.PixabayConfig{BaseURL: server.URL, APIKey: "k"})
	_, err := client.Search(context.Background(), "x", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

type fakeProvider struct {
	name       model.MediaSource
	configured bool
	items      []model.MediaItem
	err        error
}

func (f *fakeProvider) Name() model.MediaSource { return f.name }
func (f *fakeProvider) IsConfigured() bool      { return f.configured }
func (f *fakeProvider) Search(ctx context.Context, keyword string, perPage int) ([]model.MediaItem, error) {
	return f.items, f.err
}

func TestMultiSearcher(t *testing.T) {
	itemOf := func(src model.MediaSource, id string) model.MediaItem {
		return model.MediaItem{ID: id, Source: src}
	}

	t.Run("results concatenate in provider order", func(t *testing.T) {
		m := NewMultiSearcher(
			&fakeProvider{name: model.SourcePixabay, configured: true, items: []model.MediaItem{itemOf(model.SourcePixabay, "1")}},
			&fakeProvider{name: model.SourcePexels, configured: true, items: []model.MediaItem{itemOf(model.SourcePexels, "2")}},
		)
		got := m.Search(context.Background(), "x", 5)
		require.Len(t, got, 2)
		assert.Equal(t, model.SourcePixabay, got[0].Source)
		assert.Equal(t, model.SourcePexels, got[1].Source)
	})

	t.Run("unconfigured providers are skipped", func(t *testing.T) {
		m := NewMultiSearcher(
			&fakeProvider{name: model.SourcePixabay, configured: false, items: []model.MediaItem{itemOf(model.SourcePixabay, "1")}},
			&fakeProvider{name: model.SourcePexels, configured: true, items: []model.MediaItem{itemOf(model.SourcePexels, "2")}},
		)
		got := m.Search(context.Background(), "x", 5)
		require.Len(t, got, 1)
		assert.Equal(t, model.SourcePexels, got[0].Source)
	})

	t.Run("a failing provider does not abort the rest", func(t *testing.T) {
		m := NewMultiSearcher(
			&fakeProvider{name: model.SourcePixabay, configured: true, err: errors.New("boom")},
			&fakeProvider{name: model.SourcePexels, configured: true, items: []model.MediaItem{itemOf(model.SourcePexels, "2")}},
		)
		got := m.Search(context.Background(), "x", 5)
		require.Len(t, got, 1)
		assert.Equal(t, model.SourcePexels, got[0].Source)
	})

	t.Run("all failing yields empty, not error", func(t *testing.T) {
		m := NewMultiSearcher(
			&fakeProvider{name: model.SourcePixabay, configured: true, err: errors.New("boom")},
		)
		assert.Empty(t, m.Search(context.Background(), "x", 5))
	})
}
