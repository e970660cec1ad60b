// Package entity 定义领域实体
package entity

import (
	"time"
)

// MoviePatch 电影部分更新
// 每个可更新字段显式声明为指针；nil 表示本次不更新该字段。
// 未识别的键在 HTTP 绑定阶段即被拒绝，不会静默合并。
type MoviePatch struct {
	Title            *string    `json:"title,omitempty"`
	Tagline          *string    `json:"tagline,omitempty"`
	Overview         *string    `json:"overview,omitempty"`
	OriginalLanguage *string    `json:"original_language,omitempty"`
	ReleaseDate      *string    `json:"release_date,omitempty"`
	VoteAverage      *float64   `json:"vote_average,omitempty"`
	Runtime          *int       `json:"runtime,omitempty"`
	PosterPath       *string    `json:"poster_path,omitempty"`
	BackdropPath     *string    `json:"backdrop_path,omitempty"`
	ShowPrice        *float64   `json:"show_price,omitempty"`
	Genres           *[]GenreRef `json:"genres,omitempty"`
	Casts            *[]CastRef  `json:"casts,omitempty"`

	// Embedding 字段仅由一致性管理器在写入前填充，外部请求不可直接设置。
	Embedding      []float64  `json:"-"`
	EmbeddingModel *string    `json:"-"`
	EmbeddingAt    *time.Time `json:"-"`
}

// IsEmpty 检查补丁是否不包含任何可见字段
func (p *MoviePatch) IsEmpty() bool {
	if p == nil {
		return true
	}
	return p.Title == nil && p.Tagline == nil && p.Overview == nil &&
		p.OriginalLanguage == nil && p.ReleaseDate == nil && p.VoteAverage == nil &&
		p.Runtime == nil && p.PosterPath == nil && p.BackdropPath == nil &&
		p.ShowPrice == nil && p.Genres == nil && p.Casts == nil
}

// DropEmbedding 丢弃补丁中的向量字段（fail-soft 路径）
func (p *MoviePatch) DropEmbedding() {
	if p == nil {
		return
	}
	p.Embedding = nil
	p.EmbeddingModel = nil
	p.EmbeddingAt = nil
}

// Merge 返回 existing ⊕ patch 的合并视图（不落库）
// 补丁可能是部分的，embedding 文本必须从合并后的完整记录生成。
func (p *MoviePatch) Merge(existing *Movie) *Movie {
	if existing == nil {
		return nil
	}
	merged := *existing
	if p == nil {
		return &merged
	}
	if p.Title != nil {
		merged.Title = *p.Title
	}
	if p.Tagline != nil {
		merged.Tagline = *p.Tagline
	}
	if p.Overview != nil {
		merged.Overview = *p.Overview
	}
	if p.OriginalLanguage != nil {
		merged.OriginalLanguage = *p.OriginalLanguage
	}
	if p.ReleaseDate != nil {
		merged.ReleaseDate = *p.ReleaseDate
	}
	if p.VoteAverage != nil {
		merged.VoteAverage = *p.VoteAverage
	}
	if p.Runtime != nil {
		merged.Runtime = *p.Runtime
	}
	if p.PosterPath != nil {
		merged.PosterPath = *p.PosterPath
	}
	if p.BackdropPath != nil {
		merged.BackdropPath = *p.BackdropPath
	}
	if p.ShowPrice != nil {
		merged.ShowPrice = *p.ShowPrice
	}
	if p.Genres != nil {
		merged.Genres = *p.Genres
	}
	if p.Casts != nil {
		merged.Casts = *p.Casts
	}
	return &merged
}
