package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cine-rag-api/internal/config"
	"cine-rag-api/internal/domain/entity"
	apperrors "cine-rag-api/pkg/errors"
)

type fakeMovieRepo struct {
	movies  map[string]*entity.Movie
	patches []*entity.MoviePatch
}

func newFakeMovieRepo() *fakeMovieRepo {
	return &fakeMovieRepo{movies: make(map[string]*entity.Movie)}
}

func (r *fakeMovieRepo) Create(ctx context.Context, movie *entity.Movie) error {
	clone := *movie
	r.movies[movie.ID] = &clone
	return nil
}

func (r *fakeMovieRepo) GetByID(ctx context.Context, id string) (*entity.Movie, error) {
	movie, ok := r.movies[id]
	if !ok {
		return nil, nil
	}
	clone := *movie
	return &clone, nil
}

func (r *fakeMovieRepo) ApplyPatch(ctx context.Context, id string, patch *entity.MoviePatch) (*entity.Movie, error) {
	movie, ok := r.movies[id]
	if !ok {
		return nil, nil
	}
	r.patches = append(r.patches, patch)

	merged := patch.Merge(movie)
	if len(patch.Embedding) > 0 {
		merged.Embedding = patch.Embedding
	}
	if patch.EmbeddingModel != nil {
		merged.EmbeddingModel = *patch.EmbeddingModel
	}
	if patch.EmbeddingAt != nil {
		merged.EmbeddingAt = patch.EmbeddingAt
	}
	r.movies[id] = merged
	clone := *merged
	return &clone, nil
}

func (r *fakeMovieRepo) Delete(ctx context.Context, id string) error {
	delete(r.movies, id)
	return nil
}

func (r *fakeMovieRepo) List(ctx context.Context) ([]*entity.Movie, error) {
	movies := make([]*entity.Movie, 0, len(r.movies))
	for _, m := range r.movies {
		clone := *m
		movies = append(movies, &clone)
	}
	return movies, nil
}

func (r *fakeMovieRepo) ListProjections(ctx context.Context) ([]*entity.MovieProjection, error) {
	return nil, nil
}

type fakeShowRepo struct {
	shows map[string][]*entity.Show
}

func newFakeShowRepo() *fakeShowRepo {
	return &fakeShowRepo{shows: make(map[string][]*entity.Show)}
}

func (r *fakeShowRepo) CreateBatch(ctx context.Context, shows []*entity.Show) error {
	for _, s := range shows {
		r.shows[s.MovieID] = append(r.shows[s.MovieID], s)
	}
	return nil
}

func (r *fakeShowRepo) ListUpcomingByMovie(ctx context.Context, movieID string, after time.Time) ([]*entity.Show, error) {
	var future []*entity.Show
	for _, s := range r.shows[movieID] {
		if s.ShowDateTime.After(after) {
			future = append(future, s)
		}
	}
	return future, nil
}

func (r *fakeShowRepo) DeleteByMovie(ctx context.Context, movieID string) error {
	delete(r.shows, movieID)
	return nil
}

type fakeEmbedder struct {
	vector []float64
	err    error
	calls  int
}

func (e *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	vectors := make([][]float64, len(texts))
	for i := range texts {
		vectors[i] = e.vector
	}
	return vectors, nil
}

type fakeTx struct{}

func (fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(repo *fakeMovieRepo, shows *fakeShowRepo, embedder *fakeEmbedder, strict bool) *Service {
	cfg := &config.Config{
		Embedding: config.EmbeddingConfig{
			Model:         "test-embed-model",
			Dimension:     3,
			StrictReembed: strict,
		},
	}
	return NewService(repo, shows, fakeTx{}, embedder, NewProjector(), nil, cfg)
}

func TestServiceCreate_EmbedsSynchronously(t *testing.T) {
	repo := newFakeMovieRepo()
	embedder := &fakeEmbedder{vector: []float64{0.1, 0.2, 0.3}}
	svc := newTestService(repo, newFakeShowRepo(), embedder, false)

	created, err := svc.Create(context.Background(), sampleMovie())
	require.NoError(t, err)

	assert.Equal(t, 1, embedder.calls)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, []float64(created.Embedding))
	assert.Equal(t, "test-embed-model", created.EmbeddingModel)
	require.NotNil(t, created.EmbeddingAt)

	stored, _ := repo.GetByID(context.Background(), "603")
	require.NotNil(t, stored)
	assert.True(t, stored.HasEmbedding())
}

func TestServiceCreate_FailsAtomicallyOnEmbedError(t *testing.T) {
	repo := newFakeMovieRepo()
	embedder := &fakeEmbedder{err: errors.New("service unreachable")}
	svc := newTestService(repo, newFakeShowRepo(), embedder, false)

	_, err := svc.Create(context.Background(), sampleMovie())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeEmbeddingFailed, apperrors.AsAppError(err).Code)

	// 向量化失败时不得有半成品落库
	stored, _ := repo.GetByID(context.Background(), "603")
	assert.Nil(t, stored)
}

func TestServiceUpdate_PriceOnlyPatchSkipsEmbedding(t *testing.T) {
	repo := newFakeMovieRepo()
	embedder := &fakeEmbedder{vector: []float64{0.1, 0.2, 0.3}}
	svc := newTestService(repo, newFakeShowRepo(), embedder, false)

	created, err := svc.Create(context.Background(), sampleMovie())
	require.NoError(t, err)
	embeddedAt := created.EmbeddingAt
	embedder.calls = 0

	updated, err := svc.Update(context.Background(), "603",
		&entity.MoviePatch{ShowPrice: ptrFloat64(12)}, false)
	require.NoError(t, err)

	assert.Equal(t, 0, embedder.calls)
	assert.Equal(t, float64(12), updated.ShowPrice)
	assert.Equal(t, embeddedAt, updated.EmbeddingAt)
}

func TestServiceUpdate_NonStrictDegradesOnEmbedError(t *testing.T) {
	repo := newFakeMovieRepo()
	embedder := &fakeEmbedder{vector: []float64{0.1, 0.2, 0.3}}
	svc := newTestService(repo, newFakeShowRepo(), embedder, false)

	created, err := svc.Create(context.Background(), sampleMovie())
	require.NoError(t, err)
	priorEmbedding := append([]float64(nil), created.Embedding...)
	priorAt := created.EmbeddingAt

	embedder.err = errors.New("service unreachable")

	updated, err := svc.Update(context.Background(), "603",
		&entity.MoviePatch{Title: ptrString("New Title")}, false)
	require.NoError(t, err)

	// 元数据更新成功，旧向量原样保留
	assert.Equal(t, "New Title", updated.Title)
	assert.Equal(t, priorEmbedding, []float64(updated.Embedding))
	assert.Equal(t, priorAt, updated.EmbeddingAt)
}

func TestServiceUpdate_StrictAbortsOnEmbedError(t *testing.T) {
	repo := newFakeMovieRepo()
	embedder := &fakeEmbedder{vector: []float64{0.1, 0.2, 0.3}}
	svc := newTestService(repo, newFakeShowRepo(), embedder, true)

	_, err := svc.Create(context.Background(), sampleMovie())
	require.NoError(t, err)
	patchCount := len(repo.patches)

	embedder.err = errors.New("service unreachable")

	_, err = svc.Update(context.Background(), "603",
		&entity.MoviePatch{Title: ptrString("New Title")}, false)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeEmbeddingFailed, apperrors.AsAppError(err).Code)

	// 严格模式下整个更新中止，没有任何补丁落库
	assert.Len(t, repo.patches, patchCount)
	stored, _ := repo.GetByID(context.Background(), "603")
	assert.Equal(t, "黑客帝国", stored.Title)
}

func TestServiceReembed_ForcedWithEmptyPatch(t *testing.T) {
	repo := newFakeMovieRepo()
	embedder := &fakeEmbedder{vector: []float64{0.1, 0.2, 0.3}}
	svc := newTestService(repo, newFakeShowRepo(), embedder, false)

	created, err := svc.Create(context.Background(), sampleMovie())
	require.NoError(t, err)
	priorAt := created.EmbeddingAt
	embedder.calls = 0
	embedder.vector = []float64{0.4, 0.5, 0.6}

	updated, err := svc.Reembed(context.Background(), "603")
	require.NoError(t, err)

	assert.Equal(t, 1, embedder.calls)
	assert.Equal(t, []float64{0.4, 0.5, 0.6}, []float64(updated.Embedding))
	assert.NotEqual(t, priorAt, updated.EmbeddingAt)
	// 可见字段不变
	assert.Equal(t, "黑客帝国", updated.Title)
}

func TestServiceUpdate_MovieNotFound(t *testing.T) {
	svc := newTestService(newFakeMovieRepo(), newFakeShowRepo(),
		&fakeEmbedder{vector: []float64{0.1, 0.2, 0.3}}, false)

	_, err := svc.Update(context.Background(), "missing",
		&entity.MoviePatch{Title: ptrString("x")}, false)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeMovieNotFound, apperrors.AsAppError(err).Code)
}

func TestServiceDelete_RemovesShows(t *testing.T) {
	repo := newFakeMovieRepo()
	shows := newFakeShowRepo()
	svc := newTestService(repo, shows, &fakeEmbedder{vector: []float64{0.1, 0.2, 0.3}}, false)

	_, err := svc.Create(context.Background(), sampleMovie())
	require.NoError(t, err)
	require.NoError(t, svc.AddShows(context.Background(), "603", []*entity.Show{
		{ShowDateTime: time.Now().Add(time.Hour), ShowPrice: 45},
	}))

	require.NoError(t, svc.Delete(context.Background(), "603"))

	stored, _ := repo.GetByID(context.Background(), "603")
	assert.Nil(t, stored)
	assert.Empty(t, shows.shows["603"])
}

func TestServiceCreate_RejectsDuplicate(t *testing.T) {
	repo := newFakeMovieRepo()
	svc := newTestService(repo, newFakeShowRepo(),
		&fakeEmbedder{vector: []float64{0.1, 0.2, 0.3}}, false)

	_, err := svc.Create(context.Background(), sampleMovie())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), sampleMovie())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.AsAppError(err).Code)
}
