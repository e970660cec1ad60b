// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"cine-rag-api/internal/domain/entity"
)

// MovieRepository 电影仓储接口
// 目录条目归持久层所有；检索核心只按请求读取完整快照，
// 并通过补丁把 embedding 字段与其余元数据一次性原子写回。
type MovieRepository interface {
	// Create 创建电影（含已计算的向量）
	Create(ctx context.Context, movie *entity.Movie) error

	// GetByID 根据 ID 获取电影，不存在时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.Movie, error)

	// ApplyPatch 将补丁原子写入：所有出现的字段（含 embedding 三元组）
	// 在同一条 UPDATE 中落库，读取端不会观察到撕裂的中间态。
	ApplyPatch(ctx context.Context, id string, patch *entity.MoviePatch) (*entity.Movie, error)

	// Delete 删除电影（向量随行删除，无孤儿向量）
	Delete(ctx context.Context, id string) error

	// List 获取全部电影，按 release_date 降序
	List(ctx context.Context) ([]*entity.Movie, error)

	// ListProjections 获取打分所需的全库投影快照（单次一致读取）
	ListProjections(ctx context.Context) ([]*entity.MovieProjection, error)
}
