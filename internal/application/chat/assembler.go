package chat

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"cine-rag-api/internal/application/catalog"
	"cine-rag-api/internal/domain/repository"
)

// Assembler 将排名结果与实时场次拼装为生成上下文
type Assembler struct {
	shows     repository.ShowRepository
	projector *catalog.Projector
}

// NewAssembler 创建上下文拼装器
func NewAssembler(shows repository.ShowRepository, projector *catalog.Projector) *Assembler {
	return &Assembler{shows: shows, projector: projector}
}

// Assemble 为每个候选并发拉取未来场次并投影，按排名顺序以空行连接
// 场次是快照式读取路径上唯一的实时数据。
func (a *Assembler) Assemble(ctx context.Context, candidates []ScoredCandidate) (string, error) {
	blocks := make([]string, len(candidates))
	now := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for i, candidate := range candidates {
		g.Go(func() error {
			shows, err := a.shows.ListUpcomingByMovie(gctx, candidate.Movie.ID, now)
			if err != nil {
				return err
			}
			blocks[i] = a.projector.ProjectWithShowtimes(candidate.Movie.ToMovie(), shows)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	return strings.Join(blocks, "\n\n"), nil
}
