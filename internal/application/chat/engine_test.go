package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cine-rag-api/internal/application/catalog"
	"cine-rag-api/internal/config"
	"cine-rag-api/internal/domain/entity"
	apperrors "cine-rag-api/pkg/errors"
)

type fakeMovieRepo struct {
	projections []*entity.MovieProjection
}

func (r *fakeMovieRepo) Create(ctx context.Context, movie *entity.Movie) error { return nil }
func (r *fakeMovieRepo) GetByID(ctx context.Context, id string) (*entity.Movie, error) {
	return nil, nil
}
func (r *fakeMovieRepo) ApplyPatch(ctx context.Context, id string, patch *entity.MoviePatch) (*entity.Movie, error) {
	return nil, nil
}
func (r *fakeMovieRepo) Delete(ctx context.Context, id string) error { return nil }
func (r *fakeMovieRepo) List(ctx context.Context) ([]*entity.Movie, error) {
	return nil, nil
}
func (r *fakeMovieRepo) ListProjections(ctx context.Context) ([]*entity.MovieProjection, error) {
	return r.projections, nil
}

type fakeShowRepo struct {
	mu    sync.Mutex
	calls []string
}

func (r *fakeShowRepo) CreateBatch(ctx context.Context, shows []*entity.Show) error { return nil }

func (r *fakeShowRepo) ListUpcomingByMovie(ctx context.Context, movieID string, after time.Time) ([]*entity.Show, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, movieID)
	return nil, nil
}

func (r *fakeShowRepo) DeleteByMovie(ctx context.Context, movieID string) error { return nil }

func (r *fakeShowRepo) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type fakeEmbedder struct {
	vector []float64
	err    error
}

func (e *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if e.err != nil {
		return nil, e.err
	}
	vectors := make([][]float64, len(texts))
	for i := range texts {
		vectors[i] = e.vector
	}
	return vectors, nil
}

type fakeGenerator struct {
	text string
	err  error
}

func (g *fakeGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.text, nil
}

func newTestEngine(corpus []*entity.MovieProjection, embedder *fakeEmbedder, generator *fakeGenerator) (*Engine, *fakeShowRepo) {
	shows := &fakeShowRepo{}
	cfg := &config.Config{
		Chat: config.ChatConfig{DefaultTopK: 5, MaxContextK: 20},
	}
	engine := NewEngine(
		&fakeMovieRepo{projections: corpus},
		embedder,
		NewAssembler(shows, catalog.NewProjector()),
		generator,
		cfg,
	)
	return engine, shows
}

func alignedCorpus(n int) []*entity.MovieProjection {
	corpus := make([]*entity.MovieProjection, 0, n)
	for i := 0; i < n; i++ {
		// 分数随下标递减，排名结果可预测
		corpus = append(corpus, proj(fmt.Sprintf("m%02d", i), []float64{1 - float64(i)/float64(n), 0}))
	}
	return corpus
}

func TestEngineAnswer_RejectsEmptyQuestion(t *testing.T) {
	engine, _ := newTestEngine(nil, &fakeEmbedder{vector: []float64{1, 0}}, &fakeGenerator{text: "ok"})

	for _, question := range []string{"", "   ", "\n\t"} {
		_, err := engine.Answer(context.Background(), question, 5)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeInvalidParam, apperrors.AsAppError(err).Code)
	}
}

func TestEngineAnswer_CapsContextButNotHits(t *testing.T) {
	engine, shows := newTestEngine(alignedCorpus(30),
		&fakeEmbedder{vector: []float64{1, 0}}, &fakeGenerator{text: "答案"})

	answer, err := engine.Answer(context.Background(), "有什么科幻片", 100)
	require.NoError(t, err)

	// 上下文最多 20 条，引用列表按请求值截断（语料只有 30 条）
	assert.Equal(t, 20, shows.callCount())
	assert.Len(t, answer.Hits, 30)
	assert.Equal(t, "答案", answer.Text)
}

func TestEngineAnswer_DefaultTopK(t *testing.T) {
	engine, _ := newTestEngine(alignedCorpus(8),
		&fakeEmbedder{vector: []float64{1, 0}}, &fakeGenerator{text: "答案"})

	answer, err := engine.Answer(context.Background(), "有什么科幻片", 0)
	require.NoError(t, err)
	assert.Len(t, answer.Hits, 5)
	assert.Equal(t, "m00", answer.Hits[0].ID)
}

func TestEngineAnswer_NegativeTopKUsesDefault(t *testing.T) {
	engine, _ := newTestEngine(alignedCorpus(8),
		&fakeEmbedder{vector: []float64{1, 0}}, &fakeGenerator{text: "答案"})

	answer, err := engine.Answer(context.Background(), "有什么科幻片", -3)
	require.NoError(t, err)
	assert.Len(t, answer.Hits, 5)
}

func TestEngineAnswer_GenerationFailureDegrades(t *testing.T) {
	engine, _ := newTestEngine(alignedCorpus(3),
		&fakeEmbedder{vector: []float64{1, 0}},
		&fakeGenerator{err: errors.New("provider timeout")})

	answer, err := engine.Answer(context.Background(), "有什么科幻片", 3)
	require.NoError(t, err)

	assert.Equal(t, FallbackAnswer, answer.Text)
	assert.Len(t, answer.Hits, 3)
}

func TestEngineAnswer_EmbedderFailure(t *testing.T) {
	engine, _ := newTestEngine(alignedCorpus(3),
		&fakeEmbedder{err: errors.New("service unreachable")}, &fakeGenerator{text: "答案"})

	_, err := engine.Answer(context.Background(), "有什么科幻片", 3)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeEmbeddingFailed, apperrors.AsAppError(err).Code)
}

func TestEngineAnswer_RoundsScores(t *testing.T) {
	corpus := []*entity.MovieProjection{proj("a", []float64{1, 0})}
	engine, _ := newTestEngine(corpus,
		&fakeEmbedder{vector: []float64{0.12345678, 0}}, &fakeGenerator{text: "答案"})

	answer, err := engine.Answer(context.Background(), "有什么科幻片", 1)
	require.NoError(t, err)
	require.Len(t, answer.Hits, 1)
	assert.Equal(t, 0.123457, answer.Hits[0].Score)
}

func TestEngineAnswer_EmptyCorpus(t *testing.T) {
	engine, shows := newTestEngine(nil,
		&fakeEmbedder{vector: []float64{1, 0}}, &fakeGenerator{text: "没有检索到相关影片"})

	answer, err := engine.Answer(context.Background(), "有什么科幻片", 5)
	require.NoError(t, err)
	assert.Empty(t, answer.Hits)
	assert.Equal(t, 0, shows.callCount())
}
