package moderation

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Henjin888/hejin-music-platform/internal/domain/enums"
	"github.com/Henjin888/hejin-music-platform/internal/domain/model"
	pgrepo "github.com/Henjin888/hejin-music-platform/internal/repo/postgres"
)

type userStoreFake struct {
	users map[int64]model.User
}

func (s *userStoreFake) GetByID(_ context.Context, userID int64) (model.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return user, nil
}

type musicStoreFake struct {
	items map[int64]*model.Music
}

func (s *musicStoreFake) GetByID(_ context.Context, musicID int64) (model.Music, error) {
	music, ok := s.items[musicID]
	if !ok {
		return model.Music{}, pgrepo.ErrMusicNotFound
	}
	return *music, nil
}

func (s *musicStoreFake) SetAuditState(_ context.Context, _ pgx.Tx, musicID int64, status enums.AuditStatus, isPublic bool, comment string) error {
	music, ok := s.items[musicID]
	if !ok {
		return pgrepo.ErrMusicNotFound
	}
	music.AuditStatus = status
	music.IsPublic = isPublic
	music.AuditComment = comment
	return nil
}

func (s *musicStoreFake) RejectAllByCreator(_ context.Context, _ pgx.Tx, creatorID int64) (int64, error) {
	var affected int64
	for _, music := range s.items {
		if music.CreatorID == creatorID {
			music.AuditStatus = enums.AuditStatusRejected
			music.IsPublic = false
			affected++
		}
	}
	return affected, nil
}

type reportStoreFake struct {
	nextID  int64
	reports map[int64]*model.Report
}

func newReportStoreFake() *reportStoreFake {
	return &reportStoreFake{reports: make(map[int64]*model.Report)}
}

func (s *reportStoreFake) Create(_ context.Context, _ pgx.Tx, reporterID, musicID int64, reason string) (model.Report, error) {
	for _, report := range s.reports {
		if report.ReporterID == reporterID && report.MusicID == musicID && report.Status == enums.ReportStatusPending {
			return model.Report{}, pgrepo.ErrDuplicatePendingReport
		}
	}
	s.nextID++
	report := &model.Report{
		ID:         s.nextID,
		ReporterID: reporterID,
		MusicID:    musicID,
		Reason:     reason,
		Status:     enums.ReportStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	s.reports[report.ID] = report
	return *report, nil
}

func (s *reportStoreFake) GetByID(_ context.Context, reportID int64) (model.Report, error) {
	report, ok := s.reports[reportID]
	if !ok {
		return model.Report{}, pgrepo.ErrReportNotFound
	}
	return *report, nil
}

func (s *reportStoreFake) MarkProcessed(_ context.Context, _ pgx.Tx, reportID, adminID int64, status enums.ReportStatus, comment string, at time.Time) error {
	report, ok := s.reports[reportID]
	if !ok || report.Status != enums.ReportStatusPending {
		return pgrepo.ErrReportNotFound
	}
	report.Status = status
	report.AdminComment = comment
	report.ProcessedBy = &adminID
	processedAt := at
	report.ProcessedAt = &processedAt
	return nil
}

func (s *reportStoreFake) List(_ context.Context, filter pgrepo.ReportListFilter) ([]pgrepo.ReportListItem, int64, error) {
	matched := make([]*model.Report, 0, len(s.reports))
	for _, report := range s.reports {
		if filter.Status != "" && string(report.Status) != filter.Status {
			continue
		}
		matched = append(matched, report)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	start := filter.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}

	items := make([]pgrepo.ReportListItem, 0, end-start)
	for _, report := range matched[start:end] {
		items = append(items, pgrepo.ReportListItem{Report: *report})
	}
	return items, total, nil
}

func (s *reportStoreFake) HasPending(_ context.Context, reporterID, musicID int64) (bool, error) {
	for _, report := range s.reports {
		if report.ReporterID == reporterID && report.MusicID == musicID && report.Status == enums.ReportStatusPending {
			return true, nil
		}
	}
	return false, nil
}

type blacklistStoreFake struct {
	nextID  int64
	entries []*model.BlacklistEntry
}

func (s *blacklistStoreFake) Create(_ context.Context, _ pgx.Tx, userID, adminID int64, reason string, endAt *time.Time) (model.BlacklistEntry, error) {
	s.nextID++
	entry := &model.BlacklistEntry{
		ID:        s.nextID,
		UserID:    userID,
		Reason:    reason,
		StartAt:   time.Now().UTC(),
		EndAt:     endAt,
		IsActive:  true,
		CreatedBy: adminID,
	}
	s.entries = append(s.entries, entry)
	return *entry, nil
}

func (s *blacklistStoreFake) ListActiveByUser(_ context.Context, userID int64) ([]model.BlacklistEntry, error) {
	entries := make([]model.BlacklistEntry, 0)
	for _, entry := range s.entries {
		if entry.UserID == userID && entry.IsActive {
			entries = append(entries, *entry)
		}
	}
	return entries, nil
}

func (s *blacklistStoreFake) ListActive(_ context.Context, limit, offset int) ([]pgrepo.BlacklistListItem, int64, error) {
	active := make([]pgrepo.BlacklistListItem, 0)
	for _, entry := range s.entries {
		if entry.IsActive {
			active = append(active, pgrepo.BlacklistListItem{Entry: *entry})
		}
	}
	total := int64(len(active))
	if offset > len(active) {
		offset = len(active)
	}
	end := offset + limit
	if end > len(active) {
		end = len(active)
	}
	return active[offset:end], total, nil
}

type filterStoreFake struct {
	nextID  int64
	filters []model.ContentFilter
}

func (s *filterStoreFake) Create(_ context.Context, adminID int64, keyword string, filterType enums.FilterType, action enums.FilterAction) (model.ContentFilter, error) {
	s.nextID++
	filter := model.ContentFilter{
		ID:        s.nextID,
		Keyword:   keyword,
		Type:      filterType,
		Action:    action,
		IsActive:  true,
		CreatedBy: adminID,
		CreatedAt: time.Now().UTC(),
	}
	s.filters = append(s.filters, filter)
	return filter, nil
}

func (s *filterStoreFake) ListActive(_ context.Context) ([]model.ContentFilter, error) {
	active := make([]model.ContentFilter, 0, len(s.filters))
	for _, filter := range s.filters {
		if filter.IsActive {
			active = append(active, filter)
		}
	}
	return active, nil
}

type fixture struct {
	svc       *Service
	users     *userStoreFake
	music     *musicStoreFake
	reports   *reportStoreFake
	blacklist *blacklistStoreFake
	filters   *filterStoreFake
}

func newFixture() *fixture {
	f := &fixture{
		users: &userStoreFake{users: map[int64]model.User{
			1: {ID: 1, Username: "admin", Role: enums.RoleAdmin},
			2: {ID: 2, Username: "reporter", Role: enums.RoleNormal},
			3: {ID: 3, Username: "creator", Role: enums.RoleCreator},
			4: {ID: 4, Username: "other_creator", Role: enums.RoleCreator},
		}},
		music: &musicStoreFake{items: map[int64]*model.Music{
			1: {ID: 1, Title: "first song", CreatorID: 3, AuditStatus: enums.AuditStatusApproved, IsPublic: true},
		}},
		reports:   newReportStoreFake(),
		blacklist: &blacklistStoreFake{},
		filters:   &filterStoreFake{},
	}
	f.svc = NewService(Dependencies{
		UserStore:      f.users,
		MusicStore:     f.music,
		ReportStore:    f.reports,
		BlacklistStore: f.blacklist,
		FilterStore:    f.filters,
	})
	return f
}

func TestSubmitReportDuplicatePendingConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	receipt, err := f.svc.SubmitReport(ctx, 2, 1, "bad")
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if receipt.Status != enums.ReportStatusPending {
		t.Fatalf("unexpected report status: got %s want %s", receipt.Status, enums.ReportStatusPending)
	}

	if _, err := f.svc.SubmitReport(ctx, 2, 1, "still bad"); !errors.Is(err, ErrDuplicateReport) {
		t.Fatalf("expected ErrDuplicateReport, got %v", err)
	}

	if err := f.svc.ProcessReport(ctx, receipt.ReportID, 1, ActionReject, "not actionable"); err != nil {
		t.Fatalf("unexpected process error: %v", err)
	}

	if _, err := f.svc.SubmitReport(ctx, 2, 1, "bad again"); err != nil {
		t.Fatalf("expected resubmission after terminal report to succeed, got %v", err)
	}
}

func TestSubmitReportBlacklistedReporter(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.blacklist.Create(ctx, nil, 2, 1, "abuse", nil); err != nil {
		t.Fatalf("seed blacklist entry: %v", err)
	}

	if _, err := f.svc.SubmitReport(ctx, 2, 1, "bad"); !errors.Is(err, ErrBlacklisted) {
		t.Fatalf("expected ErrBlacklisted, got %v", err)
	}
}

func TestSubmitReportMusicNotFound(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.SubmitReport(context.Background(), 2, 999, "bad"); !errors.Is(err, ErrMusicNotFound) {
		t.Fatalf("expected ErrMusicNotFound, got %v", err)
	}
}

func TestSubmitReportBlockFilterTakesWorkDown(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.music.items[1].Title = "contains x and y"

	if _, err := f.filters.Create(ctx, 1, "x", enums.FilterTypeTitle, enums.FilterActionBlock); err != nil {
		t.Fatalf("seed block filter: %v", err)
	}
	if _, err := f.filters.Create(ctx, 1, "y", enums.FilterTypeTitle, enums.FilterActionFlag); err != nil {
		t.Fatalf("seed flag filter: %v", err)
	}

	receipt, err := f.svc.SubmitReport(ctx, 2, 1, "bad")
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if receipt.Status != enums.ReportStatusPending {
		t.Fatalf("report must stay pending after auto-moderation, got %s", receipt.Status)
	}

	music := f.music.items[1]
	if music.AuditStatus != enums.AuditStatusRejected {
		t.Fatalf("unexpected audit status: got %s want %s", music.AuditStatus, enums.AuditStatusRejected)
	}
	if music.IsPublic {
		t.Fatalf("blocked work must not stay public")
	}
}

func TestSubmitReportFlagFilterSendsWorkToReviewing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.music.items[1].Title = "contains x and y"

	if _, err := f.filters.Create(ctx, 1, "y", enums.FilterTypeTitle, enums.FilterActionFlag); err != nil {
		t.Fatalf("seed flag filter: %v", err)
	}

	if _, err := f.svc.SubmitReport(ctx, 2, 1, "bad"); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	music := f.music.items[1]
	if music.AuditStatus != enums.AuditStatusReviewing {
		t.Fatalf("unexpected audit status: got %s want %s", music.AuditStatus, enums.AuditStatusReviewing)
	}
	if !music.IsPublic {
		t.Fatalf("flagged work keeps its visibility until a human decides")
	}
}

func TestSubmitReportNoFilterMatchLeavesWorkUntouched(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.filters.Create(ctx, 1, "nomatch", enums.FilterTypeTitle, enums.FilterActionBlock); err != nil {
		t.Fatalf("seed filter: %v", err)
	}

	if _, err := f.svc.SubmitReport(ctx, 2, 1, "bad"); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	music := f.music.items[1]
	if music.AuditStatus != enums.AuditStatusApproved || !music.IsPublic {
		t.Fatalf("work must be untouched, got status=%s public=%v", music.AuditStatus, music.IsPublic)
	}
}

func TestProcessReportApproveCascadesToReviewing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	receipt, err := f.svc.SubmitReport(ctx, 2, 1, "bad")
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	if err := f.svc.ProcessReport(ctx, receipt.ReportID, 1, ActionApprove, "confirmed"); err != nil {
		t.Fatalf("unexpected process error: %v", err)
	}

	report := f.reports.reports[receipt.ReportID]
	if report.Status != enums.ReportStatusProcessed {
		t.Fatalf("unexpected report status: got %s want %s", report.Status, enums.ReportStatusProcessed)
	}
	if report.ProcessedBy == nil || *report.ProcessedBy != 1 {
		t.Fatalf("processing admin was not stamped: %+v", report.ProcessedBy)
	}
	if report.ProcessedAt == nil {
		t.Fatalf("processed_at was not stamped")
	}
	if report.AdminComment != "confirmed" {
		t.Fatalf("unexpected admin comment: %q", report.AdminComment)
	}

	if got := f.music.items[1].AuditStatus; got != enums.AuditStatusReviewing {
		t.Fatalf("approve must send the work to reviewing, got %s", got)
	}
}

func TestProcessReportRejectDoesNotCascade(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	receipt, err := f.svc.SubmitReport(ctx, 2, 1, "bad")
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	if err := f.svc.ProcessReport(ctx, receipt.ReportID, 1, ActionReject, "not actionable"); err != nil {
		t.Fatalf("unexpected process error: %v", err)
	}

	if got := f.reports.reports[receipt.ReportID].Status; got != enums.ReportStatusRejected {
		t.Fatalf("unexpected report status: got %s want %s", got, enums.ReportStatusRejected)
	}
	if got := f.music.items[1].AuditStatus; got != enums.AuditStatusApproved {
		t.Fatalf("reject must leave the work untouched, got %s", got)
	}
}

func TestProcessReportGuards(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	receipt, err := f.svc.SubmitReport(ctx, 2, 1, "bad")
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	if err := f.svc.ProcessReport(ctx, receipt.ReportID, 2, ActionApprove, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}
	if err := f.svc.ProcessReport(ctx, 999, 1, ActionApprove, ""); !errors.Is(err, ErrReportNotFound) {
		t.Fatalf("expected ErrReportNotFound, got %v", err)
	}
	if err := f.svc.ProcessReport(ctx, receipt.ReportID, 1, "bogus", ""); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}

	if err := f.svc.ProcessReport(ctx, receipt.ReportID, 1, ActionApprove, ""); err != nil {
		t.Fatalf("unexpected process error: %v", err)
	}
	if err := f.svc.ProcessReport(ctx, receipt.ReportID, 1, ActionReject, ""); !errors.Is(err, ErrReportAlreadyProcessed) {
		t.Fatalf("expected ErrReportAlreadyProcessed for terminal report, got %v", err)
	}
}

func TestIsBlacklistedDerivedFromExpiry(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name  string
		endAt *time.Time
		want  bool
	}{
		{name: "expired entry", endAt: &past, want: false},
		{name: "open-ended entry", endAt: nil, want: true},
		{name: "future expiry", endAt: &future, want: true},
	}

	userID := int64(10)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.blacklist.entries = nil
			if _, err := f.blacklist.Create(ctx, nil, userID, 1, "abuse", tt.endAt); err != nil {
				t.Fatalf("seed blacklist entry: %v", err)
			}

			got, err := f.svc.IsBlacklisted(ctx, userID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("unexpected blacklist state: got %v want %v", got, tt.want)
			}
		})
	}
}

func TestAddToBlacklistCascadesTakedown(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.music.items[2] = &model.Music{ID: 2, Title: "second", CreatorID: 3, AuditStatus: enums.AuditStatusApproved, IsPublic: true}
	f.music.items[3] = &model.Music{ID: 3, Title: "pending one", CreatorID: 3, AuditStatus: enums.AuditStatusPending}
	f.music.items[4] = &model.Music{ID: 4, Title: "untouched", CreatorID: 4, AuditStatus: enums.AuditStatusApproved, IsPublic: true}

	entry, err := f.svc.AddToBlacklist(ctx, 3, 1, "repeat offender", nil)
	if err != nil {
		t.Fatalf("unexpected blacklist error: %v", err)
	}
	if !entry.IsActive || entry.CreatedBy != 1 {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	for _, id := range []int64{1, 2, 3} {
		music := f.music.items[id]
		if music.AuditStatus != enums.AuditStatusRejected || music.IsPublic {
			t.Fatalf("music %d must be taken down, got status=%s public=%v", id, music.AuditStatus, music.IsPublic)
		}
	}
	if other := f.music.items[4]; other.AuditStatus != enums.AuditStatusApproved || !other.IsPublic {
		t.Fatalf("other creator's work must be unaffected, got status=%s public=%v", other.AuditStatus, other.IsPublic)
	}

	if _, err := f.svc.AddToBlacklist(ctx, 3, 1, "again", nil); !errors.Is(err, ErrAlreadyBlacklisted) {
		t.Fatalf("expected ErrAlreadyBlacklisted, got %v", err)
	}
}

func TestAddToBlacklistChecksEveryActiveEntry(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	// First active entry is expired; a later one is still open-ended. The
	// user counts as blacklisted even though the first row says otherwise.
	expired := now.Add(-time.Hour)
	if _, err := f.blacklist.Create(ctx, nil, 3, 1, "old strike", &expired); err != nil {
		t.Fatalf("seed expired entry: %v", err)
	}
	if _, err := f.blacklist.Create(ctx, nil, 3, 1, "current strike", nil); err != nil {
		t.Fatalf("seed open-ended entry: %v", err)
	}

	if _, err := f.svc.AddToBlacklist(ctx, 3, 1, "another", nil); !errors.Is(err, ErrAlreadyBlacklisted) {
		t.Fatalf("expected ErrAlreadyBlacklisted, got %v", err)
	}
}

func TestAddToBlacklistGuards(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.AddToBlacklist(ctx, 3, 2, "reason", nil); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}
	if _, err := f.svc.AddToBlacklist(ctx, 999, 1, "reason", nil); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuditMusicDecisions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.music.items[1].AuditStatus = enums.AuditStatusPending
	f.music.items[1].IsPublic = false

	if err := f.svc.AuditMusic(ctx, 1, 1, ActionApprove, "looks fine"); err != nil {
		t.Fatalf("unexpected audit error: %v", err)
	}
	music := f.music.items[1]
	if music.AuditStatus != enums.AuditStatusApproved || !music.IsPublic {
		t.Fatalf("approve must publish the work, got status=%s public=%v", music.AuditStatus, music.IsPublic)
	}
	if music.AuditComment != "looks fine" {
		t.Fatalf("audit comment must be persisted, got %q", music.AuditComment)
	}

	if err := f.svc.AuditMusic(ctx, 1, 1, ActionReject, "on review"); err != nil {
		t.Fatalf("unexpected audit error: %v", err)
	}
	if music.AuditStatus != enums.AuditStatusRejected || music.IsPublic {
		t.Fatalf("reject must take the work down, got status=%s public=%v", music.AuditStatus, music.IsPublic)
	}
}

func TestAuditMusicGuards(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if err := f.svc.AuditMusic(ctx, 1, 2, ActionApprove, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}
	if err := f.svc.AuditMusic(ctx, 999, 1, ActionApprove, ""); !errors.Is(err, ErrMusicNotFound) {
		t.Fatalf("expected ErrMusicNotFound, got %v", err)
	}
	if err := f.svc.AuditMusic(ctx, 1, 1, "bogus", ""); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}

func TestAddContentFilterValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.AddContentFilter(ctx, 2, "bad", "title", "block"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}
	if _, err := f.svc.AddContentFilter(ctx, 1, "bad", "lyrics", "block"); !errors.Is(err, ErrInvalidFilterType) {
		t.Fatalf("expected ErrInvalidFilterType, got %v", err)
	}
	if _, err := f.svc.AddContentFilter(ctx, 1, "bad", "title", "nuke"); !errors.Is(err, ErrInvalidFilterAction) {
		t.Fatalf("expected ErrInvalidFilterAction, got %v", err)
	}

	filter, err := f.svc.AddContentFilter(ctx, 1, "bad", "title", "moderate")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !filter.IsActive || filter.Action != enums.FilterActionModerate {
		t.Fatalf("unexpected filter: %+v", filter)
	}
}

func TestListReports(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i := int64(0); i < 3; i++ {
		if _, err := f.reports.Create(ctx, nil, 10+i, 1, "bad"); err != nil {
			t.Fatalf("seed report: %v", err)
		}
	}

	if _, err := f.svc.ListReports(ctx, 2, "", 1, 20); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}
	if _, err := f.svc.ListReports(ctx, 1, "weird", 1, 20); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	result, err := f.svc.ListReports(ctx, 1, "pending", 1, 2)
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("unexpected page size: got %d want 2", len(result.Items))
	}
	if result.Pagination.Total != 3 || result.Pagination.Pages != 2 {
		t.Fatalf("unexpected pagination: %+v", result.Pagination)
	}
	if result.Items[0].Report.ID > result.Items[1].Report.ID {
		t.Fatalf("reports must be ordered oldest first")
	}
}
