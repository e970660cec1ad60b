package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cine-rag-api/internal/config"
)

func newStubServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/genre/movie/list", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"genres":[{"id":28,"name":"动作"}]}`))
	})
	mux.HandleFunc("/movie/now_playing", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"page":1,"total_pages":1,"total_results":1,"results":[
			{"id":603,"title":"黑客帝国","genre_ids":[12,28]}
		]}`))
	})
	return httptest.NewServer(mux)
}

func TestFetchNowPlaying_GenreNamesAlignWithIDs(t *testing.T) {
	server := newStubServer(t)
	defer server.Close()

	client := NewClient(&config.TMDBConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	})

	movies, err := client.FetchNowPlaying(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, movies, 1)

	require.Equal(t, []int64{12, 28}, movies[0].GenreIDs)
	// 未知 id 不得挪用后续类型的名称
	assert.Equal(t, []string{"", "动作"}, movies[0].GenreNames)
}

func TestFetchNowPlaying_RequiresAPIKey(t *testing.T) {
	client := NewClient(&config.TMDBConfig{BaseURL: "http://127.0.0.1:0"})

	_, err := client.FetchNowPlaying(context.Background(), 1)
	require.Error(t, err)
}
