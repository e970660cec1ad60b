// Package tmdb 提供 TMDB 开放接口客户端
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cine-rag-api/internal/config"
)

// Client TMDB API 客户端
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NowPlayingMovie 正在上映条目
type NowPlayingMovie struct {
	ID               int64    `json:"id"`
	Title            string   `json:"title"`
	Overview         string   `json:"overview"`
	OriginalLanguage string   `json:"original_language"`
	ReleaseDate      string   `json:"release_date"`
	VoteAverage      float64  `json:"vote_average"`
	PosterPath       string   `json:"poster_path"`
	BackdropPath     string   `json:"backdrop_path"`
	GenreIDs         []int64  `json:"genre_ids"`
	GenreNames       []string `json:"-"`
}

type nowPlayingResponse struct {
	Page         int               `json:"page"`
	TotalPages   int               `json:"total_pages"`
	Results      []NowPlayingMovie `json:"results"`
	TotalResults int               `json:"total_results"`
}

type genreListResponse struct {
	Genres []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

// NewClient 创建 TMDB 客户端
func NewClient(cfg *config.TMDBConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchNowPlaying 拉取正在上映的电影列表（单页），并填充类型名称
func (c *Client) FetchNowPlaying(ctx context.Context, page int) ([]NowPlayingMovie, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("tmdb api key is not configured")
	}
	if page <= 0 {
		page = 1
	}

	genres, err := c.fetchGenreMap(ctx)
	if err != nil {
		return nil, err
	}

	var resp nowPlayingResponse
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	if err := c.get(ctx, "/movie/now_playing", params, &resp); err != nil {
		return nil, err
	}

	for i := range resp.Results {
		// 名称与 id 按下标对齐，未知 id 留空由调用方回退展示
		names := make([]string, len(resp.Results[i].GenreIDs))
		for j, id := range resp.Results[i].GenreIDs {
			names[j] = genres[id]
		}
		resp.Results[i].GenreNames = names
	}
	return resp.Results, nil
}

func (c *Client) fetchGenreMap(ctx context.Context) (map[int64]string, error) {
	var resp genreListResponse
	if err := c.get(ctx, "/genre/movie/list", nil, &resp); err != nil {
		return nil, err
	}

	genres := make(map[int64]string, len(resp.Genres))
	for _, g := range resp.Genres {
		genres[g.ID] = g.Name
	}
	return genres, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create tmdb request: %w", err)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("tmdb request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return fmt.Errorf("tmdb request failed: path=%s status=%d", path, httpResp.StatusCode)
	}

	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode tmdb response: %w", err)
	}
	return nil
}
