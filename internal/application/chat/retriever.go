// Package chat 实现基于检索增强的影片问答
package chat

import (
	"context"
	"sort"

	"cine-rag-api/internal/domain/entity"
	"cine-rag-api/pkg/logger"
	"cine-rag-api/pkg/metrics"
)

const (
	// DefaultTopK top_k 缺省值
	DefaultTopK = 5
	// MaxContextK 上下文条目硬上限
	MaxContextK = 20
)

// ScoredCandidate 单次请求内的打分结果，不持久化
type ScoredCandidate struct {
	Movie *entity.MovieProjection
	Score float64
}

// Rank 全库穷举打分并降序排列
// 相同输入必然产出相同序列：排序稳定，并列时保持语料原始顺序。
// 无向量或维度不符的条目直接跳过，单条坏数据不影响整个请求。
func Rank(ctx context.Context, query []float64, corpus []*entity.MovieProjection) []ScoredCandidate {
	candidates := make([]ScoredCandidate, 0, len(corpus))

	for _, item := range corpus {
		if !item.HasEmbedding() {
			metrics.RetrievalSkippedTotal.WithLabelValues("missing_embedding").Inc()
			continue
		}
		if len(item.Embedding) != len(query) {
			// 混用不同维度的向量化模型属于数据一致性问题，
			// 截断点积会悄悄扭曲排序，这里选择整条剔除并告警。
			metrics.RetrievalSkippedTotal.WithLabelValues("dimension_mismatch").Inc()
			logger.Warn(ctx, "向量维度不符，排除候选",
				"movie_id", item.ID, "got", len(item.Embedding), "want", len(query))
			continue
		}

		candidates = append(candidates, ScoredCandidate{
			Movie: item,
			Score: dotProduct(query, item.Embedding),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

// dotProduct 点积，向量由提供方预归一化，近似余弦相似度
func dotProduct(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
