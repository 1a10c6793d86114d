package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Henjin888/hejin-music-platform/internal/domain/enums"
	"github.com/Henjin888/hejin-music-platform/internal/domain/model"
)

var ErrMusicNotFound = errors.New("music not found")

type MusicRepo struct {
	pool *pgxpool.Pool
}

type NewMusic struct {
	Title       string
	Description string
	ObjectKey   string
	CoverKey    string
	Genre       string
	CreatorID   int64
}

func NewMusicRepo(pool *pgxpool.Pool) *MusicRepo {
	return &MusicRepo{pool: pool}
}

// Create persists a freshly uploaded work. New works always start pending
// and non-public; they become public only through an approve audit.
func (r *MusicRepo) Create(ctx context.Context, payload NewMusic) (model.Music, error) {
	if r.pool == nil {
		return model.Music{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(payload.Title) == "" || strings.TrimSpace(payload.ObjectKey) == "" || payload.CreatorID <= 0 {
		return model.Music{}, fmt.Errorf("invalid music payload")
	}

	var music model.Music
	var status string
	err := r.pool.QueryRow(ctx, `
INSERT INTO music (title, description, object_key, cover_key, genre, creator_id, audit_status, is_public, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6, 'pending', FALSE, NOW())
RETURNING id, title, description, object_key, cover_key, genre, creator_id, audit_status, is_public, uploaded_at
`,
		strings.TrimSpace(payload.Title),
		strings.TrimSpace(payload.Description),
		payload.ObjectKey,
		payload.CoverKey,
		strings.TrimSpace(payload.Genre),
		payload.CreatorID,
	).Scan(
		&music.ID, &music.Title, &music.Description, &music.ObjectKey, &music.CoverKey,
		&music.Genre, &music.CreatorID, &status, &music.IsPublic, &music.UploadedAt,
	)
	if err != nil {
		return model.Music{}, fmt.Errorf("create music: %w", err)
	}

	music.AuditStatus = enums.AuditStatus(status)
	return music, nil
}

func (r *MusicRepo) GetByID(ctx context.Context, musicID int64) (model.Music, error) {
	if r.pool == nil {
		return model.Music{}, fmt.Errorf("postgres pool is nil")
	}
	if musicID <= 0 {
		return model.Music{}, ErrMusicNotFound
	}

	row := r.pool.QueryRow(ctx, `
SELECT id, title, description, object_key, cover_key, genre, creator_id, audit_status, audit_comment, is_public, uploaded_at
FROM music
WHERE id = $1
`, musicID)

	music, err := scanMusic(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Music{}, ErrMusicNotFound
		}
		return model.Music{}, fmt.Errorf("get music by id: %w", err)
	}
	return music, nil
}

// SetAuditState moves a work to the given audit status inside the caller's
// transaction. The comment overwrites any previous audit comment.
func (r *MusicRepo) SetAuditState(ctx context.Context, tx pgx.Tx, musicID int64, status enums.AuditStatus, isPublic bool, comment string) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if musicID <= 0 {
		return ErrMusicNotFound
	}

	tag, err := tx.Exec(ctx, `
UPDATE music
SET audit_status = $2, is_public = $3, audit_comment = $4
WHERE id = $1
`, musicID, string(status), isPublic, strings.TrimSpace(comment))
	if err != nil {
		return fmt.Errorf("set music audit state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMusicNotFound
	}
	return nil
}

// RejectAllByCreator is the blacklist cascade: every work owned by the user
// is taken down regardless of its prior audit outcome.
func (r *MusicRepo) RejectAllByCreator(ctx context.Context, tx pgx.Tx, creatorID int64) (int64, error) {
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}
	if creatorID <= 0 {
		return 0, fmt.Errorf("invalid creator id")
	}

	tag, err := tx.Exec(ctx, `
UPDATE music
SET audit_status = 'rejected', is_public = FALSE
WHERE creator_id = $1
`, creatorID)
	if err != nil {
		return 0, fmt.Errorf("reject music by creator: %w", err)
	}
	return tag.RowsAffected(), nil
}

type PublicMusicFilter struct {
	Genre       string
	AuditStatus string
	Limit       int
	Offset      int
}

func (r *MusicRepo) ListPublic(ctx context.Context, filter PublicMusicFilter) ([]model.Music, int64, error) {
	if r.pool == nil {
		return nil, 0, fmt.Errorf("postgres pool is nil")
	}

	where := "WHERE is_public = TRUE"
	args := make([]any, 0, 4)
	if genre := strings.TrimSpace(filter.Genre); genre != "" {
		args = append(args, genre)
		where += fmt.Sprintf(" AND genre = $%d", len(args))
	}
	if status := strings.TrimSpace(filter.AuditStatus); status != "" {
		args = append(args, status)
		where += fmt.Sprintf(" AND audit_status = $%d", len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM music "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count public music: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
SELECT id, title, description, object_key, cover_key, genre, creator_id, audit_status, audit_comment, is_public, uploaded_at
FROM music
%s
ORDER BY uploaded_at DESC, id DESC
LIMIT $%d OFFSET $%d
`, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list public music: %w", err)
	}
	defer rows.Close()

	items := make([]model.Music, 0)
	for rows.Next() {
		music, err := scanMusic(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan public music row: %w", err)
		}
		items = append(items, music)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate public music rows: %w", err)
	}

	return items, total, nil
}

func scanMusic(row pgx.Row) (model.Music, error) {
	var music model.Music
	var status string
	var description, coverKey, genre, auditComment *string

	if err := row.Scan(
		&music.ID, &music.Title, &description, &music.ObjectKey, &coverKey,
		&genre, &music.CreatorID, &status, &auditComment, &music.IsPublic, &music.UploadedAt,
	); err != nil {
		return model.Music{}, err
	}

	if description != nil {
		music.Description = *description
	}
	if coverKey != nil {
		music.CoverKey = *coverKey
	}
	if genre != nil {
		music.Genre = *genre
	}
	if auditComment != nil {
		music.AuditComment = *auditComment
	}
	music.AuditStatus = enums.AuditStatus(status)
	return music, nil
}
