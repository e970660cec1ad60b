package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cine-rag-api/internal/domain/entity"
)

// ShowRepository 场次仓储实现
type ShowRepository struct {
	client *Client
}

// NewShowRepository 创建场次仓储
func NewShowRepository(client *Client) *ShowRepository {
	return &ShowRepository{client: client}
}

// CreateBatch 批量创建场次
func (r *ShowRepository) CreateBatch(ctx context.Context, shows []*entity.Show) error {
	ctx, span := tracer.Start(ctx, "postgres.ShowRepository.CreateBatch")
	defer span.End()

	if len(shows) == 0 {
		return nil
	}

	q := getQuerier(ctx, r.client.sqlDB)

	values := make([]string, 0, len(shows))
	args := make([]interface{}, 0, len(shows)*3)
	for i, show := range shows {
		values = append(values, fmt.Sprintf("($%d, $%d, $%d)", i*3+1, i*3+2, i*3+3))
		args = append(args, show.MovieID, show.ShowDateTime, show.ShowPrice)
	}

	query := fmt.Sprintf(
		`INSERT INTO shows (movie_id, show_datetime, show_price) VALUES %s`,
		strings.Join(values, ", "),
	)

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create shows: %w", err)
	}
	return nil
}

// ListUpcomingByMovie 获取某电影 after 之后的场次，按时间升序
func (r *ShowRepository) ListUpcomingByMovie(ctx context.Context, movieID string, after time.Time) ([]*entity.Show, error) {
	ctx, span := tracer.Start(ctx, "postgres.ShowRepository.ListUpcomingByMovie")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		SELECT id, movie_id, show_datetime, show_price, created_at
		FROM shows
		WHERE movie_id = $1 AND show_datetime > $2
		ORDER BY show_datetime ASC
	`

	rows, err := q.QueryContext(ctx, query, movieID, after)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list shows: %w", err)
	}
	defer rows.Close()

	var shows []*entity.Show
	for rows.Next() {
		var show entity.Show
		if err := rows.Scan(&show.ID, &show.MovieID, &show.ShowDateTime, &show.ShowPrice, &show.CreatedAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan show: %w", err)
		}
		shows = append(shows, &show)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to iterate shows: %w", err)
	}
	return shows, nil
}

// DeleteByMovie 删除某电影的全部场次
func (r *ShowRepository) DeleteByMovie(ctx context.Context, movieID string) error {
	ctx, span := tracer.Start(ctx, "postgres.ShowRepository.DeleteByMovie")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	if _, err := q.ExecContext(ctx, `DELETE FROM shows WHERE movie_id = $1`, movieID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete shows: %w", err)
	}
	return nil
}
