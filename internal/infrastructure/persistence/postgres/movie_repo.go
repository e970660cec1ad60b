// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"cine-rag-api/internal/domain/entity"
)

// MovieRepository 电影仓储实现
type MovieRepository struct {
	client *Client
}

// NewMovieRepository 创建电影仓储
func NewMovieRepository(client *Client) *MovieRepository {
	return &MovieRepository{client: client}
}

const movieColumns = `id, title, tagline, overview, original_language, release_date,
	vote_average, runtime, poster_path, backdrop_path, show_price, genres, casts,
	embedding, embedding_model, embedding_updated_at, created_at, updated_at`

// Create 创建电影
func (r *MovieRepository) Create(ctx context.Context, movie *entity.Movie) error {
	ctx, span := tracer.Start(ctx, "postgres.MovieRepository.Create")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	genresJSON, _ := json.Marshal(movie.Genres)
	castsJSON, _ := json.Marshal(movie.Casts)

	query := `
		INSERT INTO movies (id, title, tagline, overview, original_language, release_date,
			vote_average, runtime, poster_path, backdrop_path, show_price, genres, casts,
			embedding, embedding_model, embedding_updated_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	var embeddingAt sql.NullTime
	if movie.EmbeddingAt != nil {
		embeddingAt = sql.NullTime{Time: *movie.EmbeddingAt, Valid: true}
	}

	err := q.QueryRowContext(ctx, query,
		movie.ID, movie.Title, movie.Tagline, movie.Overview, movie.OriginalLanguage,
		movie.ReleaseDate, movie.VoteAverage, movie.Runtime, movie.PosterPath,
		movie.BackdropPath, movie.ShowPrice, genresJSON, castsJSON,
		pq.Array([]float64(movie.Embedding)), movie.EmbeddingModel, embeddingAt,
	).Scan(&movie.CreatedAt, &movie.UpdatedAt)

	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create movie: %w", err)
	}

	return nil
}

// GetByID 根据 ID 获取电影，不存在时返回 (nil, nil)
func (r *MovieRepository) GetByID(ctx context.Context, id string) (*entity.Movie, error) {
	ctx, span := tracer.Start(ctx, "postgres.MovieRepository.GetByID")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `SELECT ` + movieColumns + ` FROM movies WHERE id = $1`

	movie, err := scanMovie(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}
	return movie, nil
}

// ApplyPatch 将补丁原子写入电影记录
// 所有出现的字段（含 embedding 三元组）构成单条 UPDATE，
// 并发读取端只会观察到补丁前或补丁后的完整状态。
func (r *MovieRepository) ApplyPatch(ctx context.Context, id string, patch *entity.MoviePatch) (*entity.Movie, error) {
	ctx, span := tracer.Start(ctx, "postgres.MovieRepository.ApplyPatch")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	sets := make([]string, 0, 16)
	args := make([]interface{}, 0, 16)
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch != nil {
		if patch.Title != nil {
			add("title", *patch.Title)
		}
		if patch.Tagline != nil {
			add("tagline", *patch.Tagline)
		}
		if patch.Overview != nil {
			add("overview", *patch.Overview)
		}
		if patch.OriginalLanguage != nil {
			add("original_language", *patch.OriginalLanguage)
		}
		if patch.ReleaseDate != nil {
			add("release_date", *patch.ReleaseDate)
		}
		if patch.VoteAverage != nil {
			add("vote_average", *patch.VoteAverage)
		}
		if patch.Runtime != nil {
			add("runtime", *patch.Runtime)
		}
		if patch.PosterPath != nil {
			add("poster_path", *patch.PosterPath)
		}
		if patch.BackdropPath != nil {
			add("backdrop_path", *patch.BackdropPath)
		}
		if patch.ShowPrice != nil {
			add("show_price", *patch.ShowPrice)
		}
		if patch.Genres != nil {
			genresJSON, _ := json.Marshal(*patch.Genres)
			add("genres", genresJSON)
		}
		if patch.Casts != nil {
			castsJSON, _ := json.Marshal(*patch.Casts)
			add("casts", castsJSON)
		}
		if len(patch.Embedding) > 0 {
			add("embedding", pq.Array(patch.Embedding))
		}
		if patch.EmbeddingModel != nil {
			add("embedding_model", *patch.EmbeddingModel)
		}
		if patch.EmbeddingAt != nil {
			add("embedding_updated_at", *patch.EmbeddingAt)
		}
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(
		`UPDATE movies SET %s WHERE id = $%d RETURNING `+movieColumns,
		strings.Join(sets, ", "), len(args),
	)

	movie, err := scanMovie(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to patch movie: %w", err)
	}
	return movie, nil
}

// Delete 删除电影
func (r *MovieRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.MovieRepository.Delete")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	if _, err := q.ExecContext(ctx, `DELETE FROM movies WHERE id = $1`, id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete movie: %w", err)
	}
	return nil
}

// List 获取全部电影，按 release_date 降序
func (r *MovieRepository) List(ctx context.Context) ([]*entity.Movie, error) {
	ctx, span := tracer.Start(ctx, "postgres.MovieRepository.List")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `SELECT ` + movieColumns + ` FROM movies ORDER BY release_date DESC`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	defer rows.Close()

	var movies []*entity.Movie
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to iterate movies: %w", err)
	}
	return movies, nil
}

// ListProjections 获取打分所需的全库投影快照
// 单条 SELECT 保证一次一致读取；并发写入要么在快照前要么在快照后。
func (r *MovieRepository) ListProjections(ctx context.Context) ([]*entity.MovieProjection, error) {
	ctx, span := tracer.Start(ctx, "postgres.MovieRepository.ListProjections")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		SELECT id, title, tagline, overview, original_language, release_date,
			vote_average, runtime, poster_path, genres, casts, embedding
		FROM movies
		ORDER BY created_at ASC
	`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load corpus projection: %w", err)
	}
	defer rows.Close()

	var projections []*entity.MovieProjection
	for rows.Next() {
		var p entity.MovieProjection
		var genresJSON, castsJSON []byte
		var embedding pq.Float64Array

		err := rows.Scan(
			&p.ID, &p.Title, &p.Tagline, &p.Overview, &p.OriginalLanguage,
			&p.ReleaseDate, &p.VoteAverage, &p.Runtime, &p.PosterPath,
			&genresJSON, &castsJSON, &embedding,
		)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan projection: %w", err)
		}

		if len(genresJSON) > 0 {
			json.Unmarshal(genresJSON, &p.Genres)
		}
		if len(castsJSON) > 0 {
			json.Unmarshal(castsJSON, &p.Casts)
		}
		p.Embedding = []float64(embedding)

		projections = append(projections, &p)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to iterate projections: %w", err)
	}
	return projections, nil
}

// rowScanner 兼容 *sql.Row 和 *sql.Rows 的扫描接口
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanMovie 扫描完整电影行
func scanMovie(row rowScanner) (*entity.Movie, error) {
	var movie entity.Movie
	var genresJSON, castsJSON []byte
	var embedding pq.Float64Array
	var embeddingModel sql.NullString
	var embeddingAt sql.NullTime

	err := row.Scan(
		&movie.ID, &movie.Title, &movie.Tagline, &movie.Overview,
		&movie.OriginalLanguage, &movie.ReleaseDate, &movie.VoteAverage,
		&movie.Runtime, &movie.PosterPath, &movie.BackdropPath, &movie.ShowPrice,
		&genresJSON, &castsJSON, &embedding, &embeddingModel, &embeddingAt,
		&movie.CreatedAt, &movie.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(genresJSON) > 0 {
		json.Unmarshal(genresJSON, &movie.Genres)
	}
	if len(castsJSON) > 0 {
		json.Unmarshal(castsJSON, &movie.Casts)
	}
	movie.Embedding = embedding
	if embeddingModel.Valid {
		movie.EmbeddingModel = embeddingModel.String
	}
	if embeddingAt.Valid {
		t := embeddingAt.Time
		movie.EmbeddingAt = &t
	}
	return &movie, nil
}
