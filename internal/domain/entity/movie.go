// Package entity 定义领域实体
package entity

import (
	"strconv"
	"time"

	"github.com/lib/pq"
)

// GenreRef 类型引用（外部目录的类型条目）
type GenreRef struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Label 返回类型的展示名，无名称时回退为 ID
func (g GenreRef) Label() string {
	if g.Name != "" {
		return g.Name
	}
	if g.ID != 0 {
		return strconv.FormatInt(g.ID, 10)
	}
	return ""
}

// CastRef 演员引用（有序，带名称）
type CastRef struct {
	Name        string `json:"name,omitempty"`
	ProfilePath string `json:"profile_path,omitempty"`
}

// Movie 电影目录条目
// Embedding 由外部 embedding 服务生成，长度等于全库统一的向量维度；
// 缺失或畸形的向量会被检索端静默排除，绝不写入非服务产出的向量。
type Movie struct {
	ID               string          `json:"id" gorm:"type:text;primaryKey"`
	Title            string          `json:"title" gorm:"type:varchar(255);not null"`
	Tagline          string          `json:"tagline,omitempty" gorm:"type:text"`
	Overview         string          `json:"overview,omitempty" gorm:"type:text"`
	OriginalLanguage string          `json:"original_language,omitempty" gorm:"type:varchar(20)"`
	ReleaseDate      string          `json:"release_date,omitempty" gorm:"type:varchar(20)"`
	VoteAverage      float64         `json:"vote_average,omitempty"`
	Runtime          int             `json:"runtime,omitempty"`
	PosterPath       string          `json:"poster_path,omitempty" gorm:"type:text"`
	BackdropPath     string          `json:"backdrop_path,omitempty" gorm:"type:text"`
	ShowPrice        float64         `json:"show_price,omitempty"`
	Genres           []GenreRef      `json:"genres,omitempty" gorm:"type:jsonb;serializer:json"`
	Casts            []CastRef       `json:"casts,omitempty" gorm:"type:jsonb;serializer:json"`
	Embedding        pq.Float64Array `json:"embedding,omitempty" gorm:"type:float8[]"`
	EmbeddingModel   string          `json:"embedding_model,omitempty" gorm:"type:varchar(128)"`
	EmbeddingAt      *time.Time      `json:"embedding_updated_at,omitempty" gorm:"column:embedding_updated_at"`
	CreatedAt        time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Movie) TableName() string {
	return "movies"
}

// HasEmbedding 检查是否存在可用向量
func (m *Movie) HasEmbedding() bool {
	return m != nil && len(m.Embedding) > 0
}

// MovieProjection 全库扫描用的打分快照（单次一致读取）
type MovieProjection struct {
	ID               string
	Title            string
	Tagline          string
	Overview         string
	OriginalLanguage string
	ReleaseDate      string
	VoteAverage      float64
	Runtime          int
	PosterPath       string
	Genres           []GenreRef
	Casts            []CastRef
	Embedding        []float64
}

// HasEmbedding 检查快照条目是否可参与打分
func (p *MovieProjection) HasEmbedding() bool {
	return p != nil && len(p.Embedding) > 0
}

// ToMovie 将快照还原为投影字段对应的电影视图（用于上下文构建）
func (p *MovieProjection) ToMovie() *Movie {
	if p == nil {
		return nil
	}
	return &Movie{
		ID:               p.ID,
		Title:            p.Title,
		Tagline:          p.Tagline,
		Overview:         p.Overview,
		OriginalLanguage: p.OriginalLanguage,
		ReleaseDate:      p.ReleaseDate,
		VoteAverage:      p.VoteAverage,
		Runtime:          p.Runtime,
		PosterPath:       p.PosterPath,
		Genres:           p.Genres,
		Casts:            p.Casts,
		Embedding:        pq.Float64Array(p.Embedding),
	}
}
