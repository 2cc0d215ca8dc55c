package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSerper(t *testing.T, handler http.HandlerFunc) (*SerperProvider, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider := NewSerperProvider("test-key", 5*time.Second, 10, 4, logrus.New())
	provider.SetBaseURL(server.URL)
	return provider, server
}

func TestSerperProvider_Search(t *testing.T) {
	provider, _ := newTestSerper(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "capital of france", body["q"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"organic": []map[string]string{
				{"title": "Paris - Wikipedia", "link": "https://en.wikipedia.org/wiki/Paris", "snippet": "Paris is the capital of France."},
				{"title": "No link entry", "snippet": "dropped"},
			},
		})
	})

	results, err := provider.Search(context.Background(), "capital of france")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Paris - Wikipedia", results[0].Title)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Paris", results[0].Link)
	assert.Equal(t, "Paris is the capital of France.", results[0].Snippet)
}

func TestSerperProvider_Search_CapsResults(t *testing.T) {
	organic := make([]map[string]string, 0, 15)
	for i := 0; i < 15; i++ {
		organic = append(organic, map[string]string{
			"title":   "result",
			"link":    "https://example.com/" + string(rune('a'+i)),
			"snippet": "snippet",
		})
	}

	provider, _ := newTestSerper(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"organic": organic})
	})

	results, err := provider.Search(context.Background(), "anything")
	require.NoError(t, err)
	assert.Len(t, results, MaxWebResults)
}

func TestSerperProvider_Images_CapsAtFour(t *testing.T) {
	images := make([]map[string]string, 0, 8)
	for i := 0; i < 8; i++ {
		images = append(images, map[string]string{
			"title":    "image",
			"imageUrl": "https://example.com/img/" + string(rune('a'+i)),
		})
	}

	provider, _ := newTestSerper(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{"images": images})
	})

	results, err := provider.Images(context.Background(), "anything")
	require.NoError(t, err)
	assert.Len(t, results, MaxMediaResults)
}

func TestSerperProvider_Videos(t *testing.T) {
	provider, _ := newTestSerper(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/videos", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"videos": []map[string]string{
				{"title": "Intro", "link": "https://videos.example.com/1"},
			},
		})
	})

	results, err := provider.Videos(context.Background(), "anything")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://videos.example.com/1", results[0].Link)
}

func TestSerperProvider_ErrorStatus(t *testing.T) {
	provider, _ := newTestSerper(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("bad key"))
	})

	_, err := provider.Search(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestSerperProvider_MalformedPayload(t *testing.T) {
	provider, _ := newTestSerper(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := provider.Search(context.Background(), "anything")
	require.Error(t, err)
}

func TestSerperProvider_Unreachable(t *testing.T) {
	provider := NewSerperProvider("test-key", time.Second, 10, 4, logrus.New())
	provider.SetBaseURL("http://127.0.0.1:1")

	_, err := provider.Search(context.Background(), "anything")
	require.Error(t, err)
}
