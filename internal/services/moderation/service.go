package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Henjin888/hejin-music-platform/internal/domain/enums"
	"github.com/Henjin888/hejin-music-platform/internal/domain/model"
	pgrepo "github.com/Henjin888/hejin-music-platform/internal/repo/postgres"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"

	defaultPerPage = 20
	maxPerPage     = 100
)

var (
	ErrValidation = errors.New("validation error")

	// Forbidden.
	ErrForbidden   = errors.New("admin role required")
	ErrBlacklisted = errors.New("user is blacklisted")

	// Not found.
	ErrUserNotFound   = errors.New("user not found")
	ErrMusicNotFound  = errors.New("music not found")
	ErrReportNotFound = errors.New("report not found")

	// Conflict.
	ErrDuplicateReport        = errors.New("pending report already exists for this music")
	ErrAlreadyBlacklisted     = errors.New("user is already blacklisted")
	ErrReportAlreadyProcessed = errors.New("report has already been processed")

	// Invalid argument.
	ErrInvalidAction       = errors.New("invalid action")
	ErrInvalidStatus       = errors.New("invalid report status")
	ErrInvalidFilterType   = errors.New("invalid filter type")
	ErrInvalidFilterAction = errors.New("invalid filter action")
)

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (model.User, error)
}

type MusicStore interface {
	GetByID(ctx context.Context, musicID int64) (model.Music, error)
	SetAuditState(ctx context.Context, tx pgx.Tx, musicID int64, status enums.AuditStatus, isPublic bool, comment string) error
	RejectAllByCreator(ctx context.Context, tx pgx.Tx, creatorID int64) (int64, error)
}

type ReportStore interface {
	Create(ctx context.Context, tx pgx.Tx, reporterID, musicID int64, reason string) (model.Report, error)
	GetByID(ctx context.Context, reportID int64) (model.Report, error)
	MarkProcessed(ctx context.Context, tx pgx.Tx, reportID, adminID int64, status enums.ReportStatus, comment string, at time.Time) error
	List(ctx context.Context, filter pgrepo.ReportListFilter) ([]pgrepo.ReportListItem, int64, error)
	HasPending(ctx context.Context, reporterID, musicID int64) (bool, error)
}

type BlacklistStore interface {
	Create(ctx context.Context, tx pgx.Tx, userID, adminID int64, reason string, endAt *time.Time) (model.BlacklistEntry, error)
	ListActiveByUser(ctx context.Context, userID int64) ([]model.BlacklistEntry, error)
	ListActive(ctx context.Context, limit, offset int) ([]pgrepo.BlacklistListItem, int64, error)
}

type FilterStore interface {
	Create(ctx context.Context, adminID int64, keyword string, filterType enums.FilterType, action enums.FilterAction) (model.ContentFilter, error)
	ListActive(ctx context.Context) ([]model.ContentFilter, error)
}

// Service owns the report, blacklist and music-audit state machines. It keeps
// no state between calls: every operation re-reads what it needs and commits
// its mutations inside a single transaction.
type Service struct {
	pool      *pgxpool.Pool
	users     UserStore
	music     MusicStore
	reports   ReportStore
	blacklist BlacklistStore
	filters   FilterStore
	now       func() time.Time
}

type Dependencies struct {
	Pool           *pgxpool.Pool
	UserStore      UserStore
	MusicStore     MusicStore
	ReportStore    ReportStore
	BlacklistStore BlacklistStore
	FilterStore    FilterStore
}

func NewService(deps Dependencies) *Service {
	return &Service{
		pool:      deps.Pool,
		users:     deps.UserStore,
		music:     deps.MusicStore,
		reports:   deps.ReportStore,
		blacklist: deps.BlacklistStore,
		filters:   deps.FilterStore,
		now:       time.Now,
	}
}

type ReportReceipt struct {
	ReportID int64
	Status   enums.ReportStatus
}

// SubmitReport files a report against a work and immediately re-screens the
// work through the active content filters. The report itself stays pending;
// only the target's audit state may change.
func (s *Service) SubmitReport(ctx context.Context, reporterID, musicID int64, reason string) (ReportReceipt, error) {
	if reporterID <= 0 || musicID <= 0 || strings.TrimSpace(reason) == "" {
		return ReportReceipt{}, ErrValidation
	}
	if s.reports == nil || s.music == nil || s.blacklist == nil || s.filters == nil {
		return ReportReceipt{}, fmt.Errorf("moderation service dependencies are not configured")
	}

	blacklisted, err := s.IsBlacklisted(ctx, reporterID)
	if err != nil {
		return ReportReceipt{}, err
	}
	if blacklisted {
		return ReportReceipt{}, ErrBlacklisted
	}

	music, err := s.music.GetByID(ctx, musicID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMusicNotFound) {
			return ReportReceipt{}, ErrMusicNotFound
		}
		return ReportReceipt{}, err
	}

	// Advisory pre-check; the partial unique index on pending reports is
	// what actually closes the race between concurrent submissions.
	exists, err := s.reports.HasPending(ctx, reporterID, musicID)
	if err != nil {
		return ReportReceipt{}, err
	}
	if exists {
		return ReportReceipt{}, ErrDuplicateReport
	}

	activeFilters, err := s.filters.ListActive(ctx)
	if err != nil {
		return ReportReceipt{}, err
	}

	var report model.Report
	err = s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		created, err := s.reports.Create(txCtx, tx, reporterID, musicID, reason)
		if err != nil {
			return err
		}
		report = created

		verdict := EvaluateFilters(music.Title, music.Description, activeFilters)
		switch verdict {
		case VerdictBlock:
			return s.music.SetAuditState(txCtx, tx, musicID, enums.AuditStatusRejected, false, music.AuditComment)
		case VerdictFlag:
			return s.music.SetAuditState(txCtx, tx, musicID, enums.AuditStatusReviewing, music.IsPublic, music.AuditComment)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, pgrepo.ErrDuplicatePendingReport) {
			return ReportReceipt{}, ErrDuplicateReport
		}
		return ReportReceipt{}, err
	}

	return ReportReceipt{ReportID: report.ID, Status: report.Status}, nil
}

// ProcessReport records an admin decision on a pending report. Approving
// moves the target work to reviewing for human adjudication; it never
// rejects content directly. Both outcomes are terminal for the report.
func (s *Service) ProcessReport(ctx context.Context, reportID, adminID int64, action, comment string) error {
	if reportID <= 0 {
		return ErrValidation
	}
	if s.reports == nil || s.music == nil || s.users == nil {
		return fmt.Errorf("moderation service dependencies are not configured")
	}

	if err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}

	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrReportNotFound) {
			return ErrReportNotFound
		}
		return err
	}
	if report.Status != enums.ReportStatusPending {
		return ErrReportAlreadyProcessed
	}

	var status enums.ReportStatus
	switch action {
	case ActionApprove:
		status = enums.ReportStatusProcessed
	case ActionReject:
		status = enums.ReportStatusRejected
	default:
		return ErrInvalidAction
	}

	return s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		if err := s.reports.MarkProcessed(txCtx, tx, reportID, adminID, status, comment, s.now()); err != nil {
			if errors.Is(err, pgrepo.ErrReportNotFound) {
				// The report went terminal between the read and the update.
				return ErrReportAlreadyProcessed
			}
			return err
		}

		if status != enums.ReportStatusProcessed {
			return nil
		}

		music, err := s.music.GetByID(txCtx, report.MusicID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrMusicNotFound) {
				// The work was deleted since the report was filed; the
				// decision on the report still stands.
				return nil
			}
			return err
		}
		return s.music.SetAuditState(txCtx, tx, music.ID, enums.AuditStatusReviewing, music.IsPublic, music.AuditComment)
	})
}

type ReportListItem struct {
	Report           model.Report
	ReporterUsername string
	MusicTitle       string
	CreatorUsername  string
}

type Pagination struct {
	Page    int
	PerPage int
	Total   int64
	Pages   int64
}

type ReportPage struct {
	Items      []ReportListItem
	Pagination Pagination
}

func (s *Service) ListReports(ctx context.Context, adminID int64, status string, page, perPage int) (ReportPage, error) {
	if s.reports == nil || s.users == nil {
		return ReportPage{}, fmt.Errorf("moderation service dependencies are not configured")
	}
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return ReportPage{}, err
	}

	if status != "" {
		if _, ok := enums.ParseReportStatus(status); !ok {
			return ReportPage{}, ErrInvalidStatus
		}
	}

	page, perPage = normalizePage(page, perPage)
	rows, total, err := s.reports.List(ctx, pgrepo.ReportListFilter{
		Status: status,
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	})
	if err != nil {
		return ReportPage{}, err
	}

	items := make([]ReportListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, ReportListItem{
			Report:           row.Report,
			ReporterUsername: row.ReporterUsername,
			MusicTitle:       row.MusicTitle,
			CreatorUsername:  row.CreatorUsername,
		})
	}

	return ReportPage{
		Items:      items,
		Pagination: paginate(page, perPage, total),
	}, nil
}

// AddToBlacklist creates a new blacklist entry and cascades a takedown over
// every work the user owns. The cascade and the entry commit atomically.
func (s *Service) AddToBlacklist(ctx context.Context, userID, adminID int64, reason string, endAt *time.Time) (model.BlacklistEntry, error) {
	if userID <= 0 || strings.TrimSpace(reason) == "" {
		return model.BlacklistEntry{}, ErrValidation
	}
	if s.users == nil || s.blacklist == nil || s.music == nil {
		return model.BlacklistEntry{}, fmt.Errorf("moderation service dependencies are not configured")
	}

	if err := s.requireAdmin(ctx, adminID); err != nil {
		return model.BlacklistEntry{}, err
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.BlacklistEntry{}, ErrUserNotFound
		}
		return model.BlacklistEntry{}, err
	}

	blacklisted, err := s.IsBlacklisted(ctx, userID)
	if err != nil {
		return model.BlacklistEntry{}, err
	}
	if blacklisted {
		return model.BlacklistEntry{}, ErrAlreadyBlacklisted
	}

	var entry model.BlacklistEntry
	err = s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		created, err := s.blacklist.Create(txCtx, tx, userID, adminID, reason, endAt)
		if err != nil {
			return err
		}
		entry = created

		_, err = s.music.RejectAllByCreator(txCtx, tx, userID)
		return err
	})
	if err != nil {
		return model.BlacklistEntry{}, err
	}

	return entry, nil
}

// IsBlacklisted reports whether any active entry still covers the user at
// the current time. Expired and deactivated entries do not count.
func (s *Service) IsBlacklisted(ctx context.Context, userID int64) (bool, error) {
	if userID <= 0 {
		return false, ErrValidation
	}
	if s.blacklist == nil {
		return false, fmt.Errorf("blacklist store is nil")
	}

	entries, err := s.blacklist.ListActiveByUser(ctx, userID)
	if err != nil {
		return false, err
	}

	now := s.now()
	for _, entry := range entries {
		if entry.CurrentlyBlacklisted(now) {
			return true, nil
		}
	}
	return false, nil
}

type BlacklistItem struct {
	Entry           model.BlacklistEntry
	Username        string
	Email           string
	CurrentlyActive bool
}

type BlacklistPage struct {
	Items      []BlacklistItem
	Pagination Pagination
}

func (s *Service) ListBlacklist(ctx context.Context, adminID int64, page, perPage int) (BlacklistPage, error) {
	if s.blacklist == nil || s.users == nil {
		return BlacklistPage{}, fmt.Errorf("moderation service dependencies are not configured")
	}
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return BlacklistPage{}, err
	}

	page, perPage = normalizePage(page, perPage)
	rows, total, err := s.blacklist.ListActive(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return BlacklistPage{}, err
	}

	now := s.now()
	items := make([]BlacklistItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, BlacklistItem{
			Entry:           row.Entry,
			Username:        row.Username,
			Email:           row.Email,
			CurrentlyActive: row.Entry.CurrentlyBlacklisted(now),
		})
	}

	return BlacklistPage{
		Items:      items,
		Pagination: paginate(page, perPage, total),
	}, nil
}

// AuditMusic is the explicit admin decision on a work. Approve publishes it,
// reject takes it down; the comment is kept on the work.
func (s *Service) AuditMusic(ctx context.Context, musicID, adminID int64, action, comment string) error {
	if musicID <= 0 {
		return ErrValidation
	}
	if s.music == nil || s.users == nil {
		return fmt.Errorf("moderation service dependencies are not configured")
	}

	if err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}

	if _, err := s.music.GetByID(ctx, musicID); err != nil {
		if errors.Is(err, pgrepo.ErrMusicNotFound) {
			return ErrMusicNotFound
		}
		return err
	}

	var status enums.AuditStatus
	var isPublic bool
	switch action {
	case ActionApprove:
		status, isPublic = enums.AuditStatusApproved, true
	case ActionReject:
		status, isPublic = enums.AuditStatusRejected, false
	default:
		return ErrInvalidAction
	}

	return s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		return s.music.SetAuditState(txCtx, tx, musicID, status, isPublic, comment)
	})
}

func (s *Service) AddContentFilter(ctx context.Context, adminID int64, keyword, filterType, action string) (model.ContentFilter, error) {
	if strings.TrimSpace(keyword) == "" {
		return model.ContentFilter{}, ErrValidation
	}
	if s.filters == nil || s.users == nil {
		return model.ContentFilter{}, fmt.Errorf("moderation service dependencies are not configured")
	}

	if err := s.requireAdmin(ctx, adminID); err != nil {
		return model.ContentFilter{}, err
	}

	parsedType, ok := enums.ParseFilterType(filterType)
	if !ok {
		return model.ContentFilter{}, ErrInvalidFilterType
	}
	parsedAction, ok := enums.ParseFilterAction(action)
	if !ok {
		return model.ContentFilter{}, ErrInvalidFilterAction
	}

	return s.filters.Create(ctx, adminID, keyword, parsedType, parsedAction)
}

// requireAdmin resolves the acting user and rejects everyone without the
// admin role. A missing user is treated the same as a missing role.
func (s *Service) requireAdmin(ctx context.Context, adminID int64) error {
	if adminID <= 0 {
		return ErrForbidden
	}
	admin, err := s.users.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return ErrForbidden
		}
		return err
	}
	if admin.Role != enums.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

func (s *Service) withTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	if s.pool == nil {
		return fn(ctx, nil)
	}
	return pgrepo.WithTx(ctx, s.pool, fn)
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

func paginate(page, perPage int, total int64) Pagination {
	pages := total / int64(perPage)
	if total%int64(perPage) != 0 {
		pages++
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, Pages: pages}
}
