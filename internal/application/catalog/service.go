package catalog

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"cine-rag-api/internal/config"
	"cine-rag-api/internal/domain/entity"
	"cine-rag-api/internal/domain/repository"
	"cine-rag-api/internal/infrastructure/embedding"
	"cine-rag-api/internal/infrastructure/tmdb"
	apperrors "cine-rag-api/pkg/errors"
	"cine-rag-api/pkg/logger"
	"cine-rag-api/pkg/metrics"
)

var tracer = otel.Tracer("catalog")

// Service 影片目录服务，负责 CRUD 与向量一致性
//
// 向量生命周期规则：
//   - 创建：同步向量化，失败则整个创建失败，库中不存在无向量影片
//   - 更新：force 或语义变化时基于合并视图重新向量化，失败行为由
//     strict_reembed 决定（fail-fast 中止 / fail-soft 丢弃向量字段继续）
//   - 删除：向量随记录一起删除，无需额外清理
type Service struct {
	movies    repository.MovieRepository
	shows     repository.ShowRepository
	tx        repository.Transactor
	embedder  embedding.Embedder
	projector *Projector
	tmdb      *tmdb.Client
	cfg       *config.EmbeddingConfig
}

// NewService 创建目录服务
func NewService(
	movies repository.MovieRepository,
	shows repository.ShowRepository,
	tx repository.Transactor,
	embedder embedding.Embedder,
	projector *Projector,
	tmdbClient *tmdb.Client,
	cfg *config.Config,
) *Service {
	return &Service{
		movies:    movies,
		shows:     shows,
		tx:        tx,
		embedder:  embedder,
		projector: projector,
		tmdb:      tmdbClient,
		cfg:       &cfg.Embedding,
	}
}

// Create 创建影片并同步计算向量
// 向量化失败时不落库，保证不变量：已存在的影片必有向量。
func (s *Service) Create(ctx context.Context, movie *entity.Movie) (*entity.Movie, error) {
	ctx, span := tracer.Start(ctx, "catalog.Service.Create")
	span.SetAttributes(attribute.String("movie.id", movie.ID))
	defer span.End()

	existing, err := s.movies.GetByID(ctx, movie.ID)
	if err != nil {
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}
	if existing != nil {
		return nil, apperrors.New(apperrors.CodeConflict, "影片已存在").WithDetail("movie_id=" + movie.ID)
	}

	vector, err := s.embedOne(ctx, "create", s.projector.Project(movie))
	if err != nil {
		metrics.ReembedTotal.WithLabelValues("create", "failed").Inc()
		return nil, apperrors.ErrEmbeddingFailed.WithError(err)
	}

	now := time.Now()
	movie.Embedding = vector
	movie.EmbeddingModel = s.cfg.Model
	movie.EmbeddingAt = &now

	if err := s.movies.Create(ctx, movie); err != nil {
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}
	metrics.ReembedTotal.WithLabelValues("create", "success").Inc()

	logger.Info(ctx, "影片已创建", "movie_id", movie.ID, "title", movie.Title)
	return movie, nil
}

// Get 获取单个影片
func (s *Service) Get(ctx context.Context, id string) (*entity.Movie, error) {
	movie, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}
	if movie == nil {
		return nil, apperrors.ErrMovieNotFound
	}
	return movie, nil
}

// List 获取全部影片
func (s *Service) List(ctx context.Context) ([]*entity.Movie, error) {
	movies, err := s.movies.List(ctx)
	if err != nil {
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}
	return movies, nil
}

// Update 按补丁更新影片，必要时重新向量化
// force 为 true 或补丁触及语义字段时，基于合并后的完整视图投影文本。
// 补丁字段与向量三元组在仓储层一次原子写入，读取端不会观察到撕裂状态。
func (s *Service) Update(ctx context.Context, id string, patch *entity.MoviePatch, force bool) (*entity.Movie, error) {
	ctx, span := tracer.Start(ctx, "catalog.Service.Update")
	span.SetAttributes(
		attribute.String("movie.id", id),
		attribute.Bool("reembed.forced", force),
	)
	defer span.End()

	existing, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}
	if existing == nil {
		return nil, apperrors.ErrMovieNotFound
	}

	needReembed := force || NeedsReembed(existing, patch)
	span.SetAttributes(attribute.Bool("reembed.needed", needReembed))

	if !needReembed && patch.IsEmpty() {
		return existing, nil
	}

	trigger := "stale"
	if force {
		trigger = "forced"
	}

	if needReembed {
		merged := patch.Merge(existing)
		vector, err := s.embedOne(ctx, "update", s.projector.Project(merged))
		if err != nil {
			metrics.ReembedTotal.WithLabelValues(trigger, "failed").Inc()
			if s.cfg.StrictReembed {
				return nil, apperrors.ErrEmbeddingFailed.WithError(err)
			}
			// fail-soft：保留旧向量，仅落元数据变更
			logger.Warn(ctx, "向量化失败，降级为仅更新元数据",
				"movie_id", id, "error", err.Error())
			patch.DropEmbedding()
		} else {
			now := time.Now()
			patch.Embedding = vector
			patch.EmbeddingModel = &s.cfg.Model
			patch.EmbeddingAt = &now
			metrics.ReembedTotal.WithLabelValues(trigger, "success").Inc()
		}
	}

	updated, err := s.movies.ApplyPatch(ctx, id, patch)
	if err != nil {
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}
	if updated == nil {
		return nil, apperrors.ErrMovieNotFound
	}
	return updated, nil
}

// Reembed 强制刷新单个影片的向量，不改变任何可见字段
func (s *Service) Reembed(ctx context.Context, id string) (*entity.Movie, error) {
	return s.Update(ctx, id, &entity.MoviePatch{}, true)
}

// ReembedAllResult 批量刷新结果
type ReembedAllResult struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// ReembedAll 批量刷新全库向量
// 投影文本按批送入向量化服务，单条失败不中断其余条目。
func (s *Service) ReembedAll(ctx context.Context) (*ReembedAllResult, error) {
	ctx, span := tracer.Start(ctx, "catalog.Service.ReembedAll")
	defer span.End()

	movies, err := s.movies.List(ctx)
	if err != nil {
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}

	result := &ReembedAllResult{Total: len(movies)}
	if len(movies) == 0 {
		return result, nil
	}

	texts := make([]string, len(movies))
	for i, movie := range movies {
		texts[i] = s.projector.Project(movie)
	}

	start := time.Now()
	vectors, err := s.embedder.Embed(ctx, texts)
	metrics.EmbeddingCallDuration.WithLabelValues("bulk").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.EmbeddingCallsTotal.WithLabelValues("bulk", "error").Inc()
		return nil, apperrors.ErrEmbeddingFailed.WithError(err)
	}
	metrics.EmbeddingCallsTotal.WithLabelValues("bulk", "success").Inc()

	now := time.Now()
	for i, movie := range movies {
		if s.cfg.Dimension > 0 && len(vectors[i]) != s.cfg.Dimension {
			metrics.ReembedTotal.WithLabelValues("bulk", "failed").Inc()
			result.Failed++
			logger.Warn(ctx, "向量维度不符，跳过", "movie_id", movie.ID,
				"got", len(vectors[i]), "want", s.cfg.Dimension)
			continue
		}

		patch := &entity.MoviePatch{
			Embedding:      vectors[i],
			EmbeddingModel: &s.cfg.Model,
			EmbeddingAt:    &now,
		}
		if _, err := s.movies.ApplyPatch(ctx, movie.ID, patch); err != nil {
			metrics.ReembedTotal.WithLabelValues("bulk", "failed").Inc()
			result.Failed++
			logger.Warn(ctx, "向量写回失败", "movie_id", movie.ID, "error", err.Error())
			continue
		}
		metrics.ReembedTotal.WithLabelValues("bulk", "success").Inc()
		result.Succeeded++
	}

	logger.Info(ctx, "批量向量刷新完成",
		"total", result.Total, "succeeded", result.Succeeded, "failed", result.Failed)
	return result, nil
}

// Delete 删除影片及其全部场次
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "catalog.Service.Delete")
	span.SetAttributes(attribute.String("movie.id", id))
	defer span.End()

	existing, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return apperrors.ErrDatabaseError.WithError(err)
	}
	if existing == nil {
		return apperrors.ErrMovieNotFound
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.shows.DeleteByMovie(ctx, id); err != nil {
			return err
		}
		return s.movies.Delete(ctx, id)
	})
	if err != nil {
		return apperrors.ErrDatabaseError.WithError(err)
	}

	logger.Info(ctx, "影片已删除", "movie_id", id)
	return nil
}

// AddShows 批量创建场次，影片必须存在
// 场次变更永远不会触发重新向量化。
func (s *Service) AddShows(ctx context.Context, movieID string, shows []*entity.Show) error {
	movie, err := s.movies.GetByID(ctx, movieID)
	if err != nil {
		return apperrors.ErrDatabaseError.WithError(err)
	}
	if movie == nil {
		return apperrors.ErrMovieNotFound
	}

	for _, show := range shows {
		show.MovieID = movieID
	}
	if err := s.shows.CreateBatch(ctx, shows); err != nil {
		return apperrors.ErrDatabaseError.WithError(err)
	}
	return nil
}

// ListUpcomingShows 获取某影片的未来场次，按时间升序
func (s *Service) ListUpcomingShows(ctx context.Context, movieID string) ([]*entity.Show, error) {
	movie, err := s.movies.GetByID(ctx, movieID)
	if err != nil {
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}
	if movie == nil {
		return nil, apperrors.ErrMovieNotFound
	}

	shows, err := s.shows.ListUpcomingByMovie(ctx, movieID, time.Now())
	if err != nil {
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}
	return shows, nil
}

// ImportResult 导入结果
type ImportResult struct {
	Fetched  int `json:"fetched"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// ImportNowPlaying 从 TMDB 导入正在上映的影片
// 已存在的影片跳过，新影片走标准创建路径（同步向量化）。
func (s *Service) ImportNowPlaying(ctx context.Context, page int) (*ImportResult, error) {
	ctx, span := tracer.Start(ctx, "catalog.Service.ImportNowPlaying")
	defer span.End()

	items, err := s.tmdb.FetchNowPlaying(ctx, page)
	if err != nil {
		return nil, apperrors.ErrTMDBImportError.WithError(err)
	}

	result := &ImportResult{Fetched: len(items)}
	for _, item := range items {
		id := strconv.FormatInt(item.ID, 10)

		existing, err := s.movies.GetByID(ctx, id)
		if err != nil {
			return nil, apperrors.ErrDatabaseError.WithError(err)
		}
		if existing != nil {
			result.Skipped++
			continue
		}

		genres := make([]entity.GenreRef, 0, len(item.GenreIDs))
		for i, gid := range item.GenreIDs {
			genre := entity.GenreRef{ID: gid}
			if i < len(item.GenreNames) {
				genre.Name = item.GenreNames[i]
			}
			genres = append(genres, genre)
		}

		movie := &entity.Movie{
			ID:               id,
			Title:            item.Title,
			Overview:         item.Overview,
			OriginalLanguage: item.OriginalLanguage,
			ReleaseDate:      item.ReleaseDate,
			VoteAverage:      item.VoteAverage,
			PosterPath:       item.PosterPath,
			BackdropPath:     item.BackdropPath,
			Genres:           genres,
		}

		if _, err := s.Create(ctx, movie); err != nil {
			result.Failed++
			logger.Warn(ctx, "导入影片失败", "movie_id", id, "error", err.Error())
			continue
		}
		result.Imported++
	}

	logger.Info(ctx, "TMDB 导入完成", "fetched", result.Fetched,
		"imported", result.Imported, "skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}

// embedOne 向量化单条文本并校验维度
func (s *Service) embedOne(ctx context.Context, operation, text string) ([]float64, error) {
	start := time.Now()
	vectors, err := s.embedder.Embed(ctx, []string{text})
	metrics.EmbeddingCallDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.EmbeddingCallsTotal.WithLabelValues(operation, "error").Inc()
		return nil, err
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		metrics.EmbeddingCallsTotal.WithLabelValues(operation, "error").Inc()
		return nil, apperrors.New(apperrors.CodeEmbeddingFailed, "向量化服务未返回向量")
	}
	if s.cfg.Dimension > 0 && len(vectors[0]) != s.cfg.Dimension {
		metrics.EmbeddingCallsTotal.WithLabelValues(operation, "error").Inc()
		return nil, apperrors.New(apperrors.CodeEmbeddingFailed, "向量维度不符").
			WithDetail("got=" + strconv.Itoa(len(vectors[0])) + " want=" + strconv.Itoa(s.cfg.Dimension))
	}

	metrics.EmbeddingCallsTotal.WithLabelValues(operation, "success").Inc()
	return vectors[0], nil
}
