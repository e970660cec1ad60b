package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cine-rag-api/internal/domain/entity"
)

func proj(id string, vec []float64) *entity.MovieProjection {
	return &entity.MovieProjection{
		ID:        id,
		Title:     "影片" + id,
		Embedding: vec,
	}
}

func TestRank_OrdersByDescendingScore(t *testing.T) {
	query := []float64{1, 0}
	corpus := []*entity.MovieProjection{
		proj("a", []float64{0.2, 0}),
		proj("b", []float64{0.9, 0}),
		proj("c", []float64{0.5, 0}),
	}

	candidates := Rank(context.Background(), query, corpus)
	require.Len(t, candidates, 3)

	assert.Equal(t, "b", candidates[0].Movie.ID)
	assert.Equal(t, "c", candidates[1].Movie.ID)
	assert.Equal(t, "a", candidates[2].Movie.ID)
	for i := 1; i < len(candidates); i++ {
		assert.GreaterOrEqual(t, candidates[i-1].Score, candidates[i].Score)
	}
}

func TestRank_SkipsMissingEmbedding(t *testing.T) {
	query := []float64{1, 0}
	corpus := []*entity.MovieProjection{
		proj("a", []float64{0.3, 0}),
		proj("b", nil),
		proj("c", []float64{}),
	}

	candidates := Rank(context.Background(), query, corpus)
	require.Len(t, candidates, 1)
	assert.Equal(t, "a", candidates[0].Movie.ID)
}

func TestRank_SkipsDimensionMismatch(t *testing.T) {
	query := []float64{1, 0}
	corpus := []*entity.MovieProjection{
		proj("a", []float64{0.3, 0}),
		proj("b", []float64{0.9, 0, 0.1}),
	}

	candidates := Rank(context.Background(), query, corpus)
	require.Len(t, candidates, 1)
	assert.Equal(t, "a", candidates[0].Movie.ID)
}

func TestRank_Deterministic(t *testing.T) {
	query := []float64{0.6, 0.8}
	corpus := []*entity.MovieProjection{
		proj("a", []float64{0.1, 0.9}),
		proj("b", []float64{0.9, 0.1}),
		proj("c", []float64{0.5, 0.5}),
		proj("d", []float64{0.7, 0.3}),
	}

	first := Rank(context.Background(), query, corpus)
	second := Rank(context.Background(), query, corpus)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Movie.ID, second[i].Movie.ID)
		assert.Equal(t, first[i].Score, second[i].Score)
	}
}

func TestRank_TiesKeepCorpusOrder(t *testing.T) {
	query := []float64{1, 0}
	corpus := []*entity.MovieProjection{
		proj("first", []float64{0.5, 0}),
		proj("second", []float64{0.5, 0.7}),
		proj("third", []float64{0.5, -0.3}),
	}

	candidates := Rank(context.Background(), query, corpus)
	require.Len(t, candidates, 3)
	assert.Equal(t, "first", candidates[0].Movie.ID)
	assert.Equal(t, "second", candidates[1].Movie.ID)
	assert.Equal(t, "third", candidates[2].Movie.ID)
}

func TestRank_EmptyCorpus(t *testing.T) {
	candidates := Rank(context.Background(), []float64{1, 0}, nil)
	assert.Empty(t, candidates)
}
