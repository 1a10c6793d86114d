package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Henjin888/hejin-music-platform/internal/domain/model"
)

type BlacklistRepo struct {
	pool *pgxpool.Pool
}

type BlacklistListItem struct {
	Entry    model.BlacklistEntry
	Username string
	Email    string
}

func NewBlacklistRepo(pool *pgxpool.Pool) *BlacklistRepo {
	return &BlacklistRepo{pool: pool}
}

func (r *BlacklistRepo) Create(ctx context.Context, tx pgx.Tx, userID, adminID int64, reason string, endAt *time.Time) (model.BlacklistEntry, error) {
	if tx == nil {
		return model.BlacklistEntry{}, fmt.Errorf("transaction is required")
	}
	if userID <= 0 || adminID <= 0 {
		return model.BlacklistEntry{}, fmt.Errorf("invalid blacklist payload")
	}
	if strings.TrimSpace(reason) == "" {
		return model.BlacklistEntry{}, fmt.Errorf("blacklist reason is required")
	}

	entry := model.BlacklistEntry{
		UserID:    userID,
		Reason:    strings.TrimSpace(reason),
		EndAt:     endAt,
		IsActive:  true,
		CreatedBy: adminID,
	}
	err := tx.QueryRow(ctx, `
INSERT INTO blacklists (user_id, reason, start_at, end_at, is_active, created_by)
VALUES ($1, $2, NOW(), $3, TRUE, $4)
RETURNING id, start_at
`, userID, entry.Reason, endAt, adminID).Scan(&entry.ID, &entry.StartAt)
	if err != nil {
		return model.BlacklistEntry{}, fmt.Errorf("create blacklist entry: %w", err)
	}

	return entry, nil
}

// ListActiveByUser returns every active entry for the user; expiry is
// evaluated by the caller against its own clock.
func (r *BlacklistRepo) ListActiveByUser(ctx context.Context, userID int64) ([]model.BlacklistEntry, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, reason, start_at, end_at, is_active, created_by
FROM blacklists
WHERE user_id = $1 AND is_active = TRUE
ORDER BY start_at ASC, id ASC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list active blacklist entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.BlacklistEntry, 0)
	for rows.Next() {
		var entry model.BlacklistEntry
		if err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.Reason, &entry.StartAt,
			&entry.EndAt, &entry.IsActive, &entry.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("scan blacklist row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blacklist rows: %w", err)
	}

	return entries, nil
}

// DeactivateExpired flips entries whose end window has passed.
func (r *BlacklistRepo) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE blacklists
SET is_active = FALSE
WHERE is_active = TRUE AND end_at IS NOT NULL AND end_at <= $1
`, now)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired blacklist entries: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *BlacklistRepo) ListActive(ctx context.Context, limit, offset int) ([]BlacklistListItem, int64, error) {
	if r.pool == nil {
		return nil, 0, fmt.Errorf("postgres pool is nil")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM blacklists WHERE is_active = TRUE
`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count blacklist entries: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
SELECT b.id, b.user_id, b.reason, b.start_at, b.end_at, b.is_active, b.created_by, u.username, u.email
FROM blacklists b
JOIN users u ON u.id = b.user_id
WHERE b.is_active = TRUE
ORDER BY b.start_at DESC, b.id DESC
LIMIT $1 OFFSET $2
`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list blacklist entries: %w", err)
	}
	defer rows.Close()

	items := make([]BlacklistListItem, 0)
	for rows.Next() {
		var item BlacklistListItem
		if err := rows.Scan(
			&item.Entry.ID, &item.Entry.UserID, &item.Entry.Reason, &item.Entry.StartAt,
			&item.Entry.EndAt, &item.Entry.IsActive, &item.Entry.CreatedBy,
			&item.Username, &item.Email,
		); err != nil {
			return nil, 0, fmt.Errorf("scan blacklist list row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate blacklist list rows: %w", err)
	}

	return items, total, nil
}
