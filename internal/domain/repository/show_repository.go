// Package repository 定义数据访问层接口
package repository

import (
	"context"
	"time"

	"cine-rag-api/internal/domain/entity"
)

// ShowRepository 场次仓储接口
type ShowRepository interface {
	// CreateBatch 为一部电影批量创建场次
	CreateBatch(ctx context.Context, shows []*entity.Show) error

	// ListUpcomingByMovie 获取某电影在 after 之后的场次，按时间升序
	ListUpcomingByMovie(ctx context.Context, movieID string, after time.Time) ([]*entity.Show, error)

	// DeleteByMovie 删除某电影的全部场次
	DeleteByMovie(ctx context.Context, movieID string) error
}
