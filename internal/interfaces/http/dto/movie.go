package dto

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"cine-rag-api/internal/domain/entity"
)

// CreateMovieRequest 创建影片请求
type CreateMovieRequest struct {
	ID               string             `json:"id" binding:"required"`
	Title            string             `json:"title" binding:"required"`
	Tagline          string             `json:"tagline"`
	Overview         string             `json:"overview"`
	OriginalLanguage string             `json:"original_language"`
	ReleaseDate      string             `json:"release_date"`
	VoteAverage      float64            `json:"vote_average"`
	Runtime          int                `json:"runtime"`
	PosterPath       string             `json:"poster_path"`
	BackdropPath     string             `json:"backdrop_path"`
	ShowPrice        float64            `json:"show_price"`
	Genres           []entity.GenreRef  `json:"genres"`
	Casts            []entity.CastRef   `json:"casts"`
}

// ToMovieEntity 转换为领域实体
func (r *CreateMovieRequest) ToMovieEntity() *entity.Movie {
	return &entity.Movie{
		ID:               r.ID,
		Title:            r.Title,
		Tagline:          r.Tagline,
		Overview:         r.Overview,
		OriginalLanguage: r.OriginalLanguage,
		ReleaseDate:      r.ReleaseDate,
		VoteAverage:      r.VoteAverage,
		Runtime:          r.Runtime,
		PosterPath:       r.PosterPath,
		BackdropPath:     r.BackdropPath,
		ShowPrice:        r.ShowPrice,
		Genres:           r.Genres,
		Casts:            r.Casts,
	}
}

// BindMoviePatch 绑定部分更新请求
// 未识别的键直接拒绝，不做静默合并。
func BindMoviePatch(c *gin.Context) (*entity.MoviePatch, error) {
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()

	var patch entity.MoviePatch
	if err := decoder.Decode(&patch); err != nil {
		return nil, fmt.Errorf("invalid patch body: %w", err)
	}
	return &patch, nil
}

// MovieResponse 影片响应，不回传向量本体
type MovieResponse struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Tagline          string            `json:"tagline,omitempty"`
	Overview         string            `json:"overview,omitempty"`
	OriginalLanguage string            `json:"original_language,omitempty"`
	ReleaseDate      string            `json:"release_date,omitempty"`
	VoteAverage      float64           `json:"vote_average,omitempty"`
	Runtime          int               `json:"runtime,omitempty"`
	PosterPath       string            `json:"poster_path,omitempty"`
	BackdropPath     string            `json:"backdrop_path,omitempty"`
	ShowPrice        float64           `json:"show_price,omitempty"`
	Genres           []entity.GenreRef `json:"genres,omitempty"`
	Casts            []entity.CastRef  `json:"casts,omitempty"`
	EmbeddingModel   string            `json:"embedding_model,omitempty"`
	EmbeddingAt      *time.Time        `json:"embedding_updated_at,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// ToMovieResponse 实体转响应
func ToMovieResponse(m *entity.Movie) *MovieResponse {
	return &MovieResponse{
		ID:               m.ID,
		Title:            m.Title,
		Tagline:          m.Tagline,
		Overview:         m.Overview,
		OriginalLanguage: m.OriginalLanguage,
		ReleaseDate:      m.ReleaseDate,
		VoteAverage:      m.VoteAverage,
		Runtime:          m.Runtime,
		PosterPath:       m.PosterPath,
		BackdropPath:     m.BackdropPath,
		ShowPrice:        m.ShowPrice,
		Genres:           m.Genres,
		Casts:            m.Casts,
		EmbeddingModel:   m.EmbeddingModel,
		EmbeddingAt:      m.EmbeddingAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// ToMovieListResponse 实体列表转响应列表
func ToMovieListResponse(movies []*entity.Movie) []*MovieResponse {
	resp := make([]*MovieResponse, 0, len(movies))
	for _, m := range movies {
		resp = append(resp, ToMovieResponse(m))
	}
	return resp
}

// ImportNowPlayingRequest TMDB 导入请求
type ImportNowPlayingRequest struct {
	Page int `json:"page"`
}
