package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cine-rag-api/internal/application/catalog"
	"cine-rag-api/internal/domain/entity"
)

type fixtureShowRepo struct {
	byMovie map[string][]*entity.Show
	err     error
}

func (r *fixtureShowRepo) CreateBatch(ctx context.Context, shows []*entity.Show) error { return nil }

func (r *fixtureShowRepo) ListUpcomingByMovie(ctx context.Context, movieID string, after time.Time) ([]*entity.Show, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.byMovie[movieID], nil
}

func (r *fixtureShowRepo) DeleteByMovie(ctx context.Context, movieID string) error { return nil }

func TestAssemble_BlocksFollowRankOrder(t *testing.T) {
	shows := &fixtureShowRepo{byMovie: map[string][]*entity.Show{
		"m1": {
			{MovieID: "m1", ShowDateTime: time.Date(2026, 9, 2, 19, 30, 0, 0, time.UTC), ShowPrice: 45},
		},
	}}
	assembler := NewAssembler(shows, catalog.NewProjector())

	candidates := []ScoredCandidate{
		{Movie: proj("m1", []float64{1, 0}), Score: 0.9},
		{Movie: proj("m2", []float64{0.5, 0}), Score: 0.5},
	}

	text, err := assembler.Assemble(context.Background(), candidates)
	require.NoError(t, err)

	first := strings.Index(text, "[movie#m1]")
	second := strings.Index(text, "[movie#m2]")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first)

	assert.Contains(t, text, "• 2026-09-02 19:30 票价45元")
	// 无场次的候选带占位句
	assert.Contains(t, text, "暂无未来场次。")

	blocks := strings.Split(text, "\n\n")
	assert.Len(t, blocks, 2)
}

func TestAssemble_ShowLookupFailure(t *testing.T) {
	assembler := NewAssembler(&fixtureShowRepo{err: errors.New("connection refused")},
		catalog.NewProjector())

	_, err := assembler.Assemble(context.Background(), []ScoredCandidate{
		{Movie: proj("m1", []float64{1, 0}), Score: 0.9},
	})
	require.Error(t, err)
}

func TestAssemble_NoCandidates(t *testing.T) {
	assembler := NewAssembler(&fixtureShowRepo{}, catalog.NewProjector())

	text, err := assembler.Assemble(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, text)
}
