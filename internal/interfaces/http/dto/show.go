package dto

import (
	"time"

	"cine-rag-api/internal/domain/entity"
)

// CreateShowsRequest 批量创建场次请求
type CreateShowsRequest struct {
	MovieID string             `json:"movie_id" binding:"required"`
	Shows   []CreateShowEntry  `json:"shows" binding:"required,min=1,dive"`
}

// CreateShowEntry 单个场次
type CreateShowEntry struct {
	ShowDateTime time.Time `json:"show_datetime" binding:"required"`
	ShowPrice    float64   `json:"show_price" binding:"required,gt=0"`
}

// ToShowEntities 转换为领域实体
func (r *CreateShowsRequest) ToShowEntities() []*entity.Show {
	shows := make([]*entity.Show, 0, len(r.Shows))
	for _, s := range r.Shows {
		shows = append(shows, &entity.Show{
			MovieID:      r.MovieID,
			ShowDateTime: s.ShowDateTime,
			ShowPrice:    s.ShowPrice,
		})
	}
	return shows
}

// ShowResponse 场次响应
type ShowResponse struct {
	ID           string    `json:"id"`
	MovieID      string    `json:"movie_id"`
	ShowDateTime time.Time `json:"show_datetime"`
	ShowPrice    float64   `json:"show_price"`
}

// ToShowListResponse 实体列表转响应列表
func ToShowListResponse(shows []*entity.Show) []*ShowResponse {
	resp := make([]*ShowResponse, 0, len(shows))
	for _, s := range shows {
		resp = append(resp, &ShowResponse{
			ID:           s.ID,
			MovieID:      s.MovieID,
			ShowDateTime: s.ShowDateTime,
			ShowPrice:    s.ShowPrice,
		})
	}
	return resp
}
