package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Henjin888/hejin-music-platform/internal/domain/enums"
	"github.com/Henjin888/hejin-music-platform/internal/domain/model"
)

var (
	ErrReportNotFound = errors.New("report not found")

	// ErrDuplicatePendingReport surfaces the partial unique index on
	// reports(reporter_id, music_id) WHERE status = 'pending'. The index,
	// not the application-level check, is what makes concurrent duplicate
	// submissions safe.
	ErrDuplicatePendingReport = errors.New("pending report already exists")
)

type ReportRepo struct {
	pool *pgxpool.Pool
}

type ReportListItem struct {
	Report           model.Report
	ReporterUsername string
	MusicTitle       string
	CreatorUsername  string
}

func NewReportRepo(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

func (r *ReportRepo) Create(ctx context.Context, tx pgx.Tx, reporterID, musicID int64, reason string) (model.Report, error) {
	if tx == nil {
		return model.Report{}, fmt.Errorf("transaction is required")
	}
	if reporterID <= 0 || musicID <= 0 {
		return model.Report{}, fmt.Errorf("invalid report payload")
	}
	if strings.TrimSpace(reason) == "" {
		return model.Report{}, fmt.Errorf("report reason is required")
	}

	report := model.Report{
		ReporterID: reporterID,
		MusicID:    musicID,
		Reason:     strings.TrimSpace(reason),
		Status:     enums.ReportStatusPending,
	}
	err := tx.QueryRow(ctx, `
INSERT INTO reports (reporter_id, music_id, reason, status, created_at)
VALUES ($1, $2, $3, 'pending', NOW())
RETURNING id, created_at
`, reporterID, musicID, report.Reason).Scan(&report.ID, &report.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.Report{}, ErrDuplicatePendingReport
		}
		return model.Report{}, fmt.Errorf("create report: %w", err)
	}

	return report, nil
}

func (r *ReportRepo) GetByID(ctx context.Context, reportID int64) (model.Report, error) {
	if r.pool == nil {
		return model.Report{}, fmt.Errorf("postgres pool is nil")
	}
	if reportID <= 0 {
		return model.Report{}, ErrReportNotFound
	}

	row := r.pool.QueryRow(ctx, `
SELECT id, reporter_id, music_id, reason, status, admin_comment, processed_by, processed_at, created_at
FROM reports
WHERE id = $1
`, reportID)

	report, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Report{}, ErrReportNotFound
		}
		return model.Report{}, fmt.Errorf("get report by id: %w", err)
	}
	return report, nil
}

// MarkProcessed stamps the terminal status, the processing admin and the
// decision comment. It only touches reports still in pending.
func (r *ReportRepo) MarkProcessed(ctx context.Context, tx pgx.Tx, reportID, adminID int64, status enums.ReportStatus, comment string, at time.Time) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if reportID <= 0 || adminID <= 0 {
		return ErrReportNotFound
	}

	tag, err := tx.Exec(ctx, `
UPDATE reports
SET status = $2, processed_by = $3, admin_comment = $4, processed_at = $5
WHERE id = $1 AND status = 'pending'
`, reportID, string(status), adminID, strings.TrimSpace(comment), at.UTC())
	if err != nil {
		return fmt.Errorf("mark report processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

type ReportListFilter struct {
	Status string
	Limit  int
	Offset int
}

// List returns reports joined with reporter and target-music summaries,
// oldest first, ties broken by id.
func (r *ReportRepo) List(ctx context.Context, filter ReportListFilter) ([]ReportListItem, int64, error) {
	if r.pool == nil {
		return nil, 0, fmt.Errorf("postgres pool is nil")
	}

	where := ""
	args := make([]any, 0, 3)
	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		where = "WHERE r.status = $1"
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM reports r "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
SELECT
	r.id, r.reporter_id, r.music_id, r.reason, r.status, r.admin_comment, r.processed_by, r.processed_at, r.created_at,
	reporter.username,
	m.title,
	creator.username
FROM reports r
JOIN users reporter ON reporter.id = r.reporter_id
JOIN music m ON m.id = r.music_id
JOIN users creator ON creator.id = m.creator_id
%s
ORDER BY r.created_at ASC, r.id ASC
LIMIT $%d OFFSET $%d
`, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	items := make([]ReportListItem, 0)
	for rows.Next() {
		var item ReportListItem
		var status string
		var adminComment *string
		if err := rows.Scan(
			&item.Report.ID, &item.Report.ReporterID, &item.Report.MusicID,
			&item.Report.Reason, &status, &adminComment,
			&item.Report.ProcessedBy, &item.Report.ProcessedAt, &item.Report.CreatedAt,
			&item.ReporterUsername, &item.MusicTitle, &item.CreatorUsername,
		); err != nil {
			return nil, 0, fmt.Errorf("scan report row: %w", err)
		}
		item.Report.Status = enums.ReportStatus(status)
		if adminComment != nil {
			item.Report.AdminComment = *adminComment
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate report rows: %w", err)
	}

	return items, total, nil
}

func (r *ReportRepo) HasPending(ctx context.Context, reporterID, musicID int64) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1 FROM reports
	WHERE reporter_id = $1 AND music_id = $2 AND status = 'pending'
)
`, reporterID, musicID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check pending report: %w", err)
	}
	return exists, nil
}

func scanReport(row pgx.Row) (model.Report, error) {
	var report model.Report
	var status string
	var adminComment *string

	if err := row.Scan(
		&report.ID, &report.ReporterID, &report.MusicID, &report.Reason,
		&status, &adminComment, &report.ProcessedBy, &report.ProcessedAt, &report.CreatedAt,
	); err != nil {
		return model.Report{}, err
	}

	report.Status = enums.ReportStatus(status)
	if adminComment != nil {
		report.AdminComment = *adminComment
	}
	return report, nil
}
