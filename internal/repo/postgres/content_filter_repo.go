package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Henjin888/hejin-music-platform/internal/domain/enums"
	"github.com/Henjin888/hejin-music-platform/internal/domain/model"
)

type ContentFilterRepo struct {
	pool *pgxpool.Pool
}

func NewContentFilterRepo(pool *pgxpool.Pool) *ContentFilterRepo {
	return &ContentFilterRepo{pool: pool}
}

func (r *ContentFilterRepo) Create(ctx context.Context, adminID int64, keyword string, filterType enums.FilterType, action enums.FilterAction) (model.ContentFilter, error) {
	if r.pool == nil {
		return model.ContentFilter{}, fmt.Errorf("postgres pool is nil")
	}
	if adminID <= 0 || strings.TrimSpace(keyword) == "" {
		return model.ContentFilter{}, fmt.Errorf("invalid content filter payload")
	}

	filter := model.ContentFilter{
		Keyword:   strings.TrimSpace(keyword),
		Type:      filterType,
		Action:    action,
		IsActive:  true,
		CreatedBy: adminID,
	}
	err := r.pool.QueryRow(ctx, `
INSERT INTO content_filters (keyword, filter_type, action, is_active, created_by, created_at)
VALUES ($1, $2, $3, TRUE, $4, NOW())
RETURNING id, created_at
`, filter.Keyword, string(filterType), string(action), adminID).Scan(&filter.ID, &filter.CreatedAt)
	if err != nil {
		return model.ContentFilter{}, fmt.Errorf("create content filter: %w", err)
	}

	return filter, nil
}

// ListActive returns active filters in creation order, which is also the
// order they are evaluated in.
func (r *ContentFilterRepo) ListActive(ctx context.Context) ([]model.ContentFilter, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, keyword, filter_type, action, is_active, created_by, created_at
FROM content_filters
WHERE is_active = TRUE
ORDER BY created_at ASC, id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list active content filters: %w", err)
	}
	defer rows.Close()

	filters := make([]model.ContentFilter, 0)
	for rows.Next() {
		var filter model.ContentFilter
		var filterType, action string
		if err := rows.Scan(
			&filter.ID, &filter.Keyword, &filterType, &action,
			&filter.IsActive, &filter.CreatedBy, &filter.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan content filter row: %w", err)
		}
		filter.Type = enums.FilterType(filterType)
		filter.Action = enums.FilterAction(action)
		filters = append(filters, filter)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content filter rows: %w", err)
	}

	return filters, nil
}
