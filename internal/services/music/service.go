package music

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/Henjin888/hejin-music-platform/internal/domain/enums"
	"github.com/Henjin888/hejin-music-platform/internal/domain/model"
	pgrepo "github.com/Henjin888/hejin-music-platform/internal/repo/postgres"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrMusicNotFound = errors.New("music not found")
	ErrForbidden     = errors.New("forbidden")
)

const (
	signedURLTTL   = 15 * time.Minute
	defaultPerPage = 20
	maxPerPage     = 100
)

type Store interface {
	Create(ctx context.Context, payload pgrepo.NewMusic) (model.Music, error)
	GetByID(ctx context.Context, musicID int64) (model.Music, error)
	ListPublic(ctx context.Context, filter pgrepo.PublicMusicFilter) ([]model.Music, int64, error)
}

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type Service struct {
	store   Store
	storage ObjectStorage
}

func NewService(store Store, storage ObjectStorage) *Service {
	return &Service{
		store:   store,
		storage: storage,
	}
}

// Viewer identifies who is looking at a work. Role decides whether
// non-public works are visible.
type Viewer struct {
	ID   int64
	Role string
}

type UploadInput struct {
	Title       string
	Description string
	Genre       string
	FileName    string
	ContentType string
	Body        io.Reader
	Size        int64

	CoverFileName    string
	CoverContentType string
	CoverBody        io.Reader
	CoverSize        int64
}

type Track struct {
	ID          int64
	Title       string
	Description string
	Genre       string
	CreatorID   int64
	AuditStatus enums.AuditStatus
	IsPublic    bool
	UploadedAt  time.Time
	StreamURL   string
	CoverURL    string
}

type Pagination struct {
	Page    int
	PerPage int
	Total   int64
	Pages   int64
}

type TrackPage struct {
	Items      []Track
	Pagination Pagination
}

// Upload stores the audio object (and optional cover) and records the work.
// New works always enter the audit queue: pending and non-public.
func (s *Service) Upload(ctx context.Context, creatorID int64, input UploadInput) (Track, error) {
	if creatorID <= 0 || input.Body == nil || input.Size <= 0 || strings.TrimSpace(input.Title) == "" {
		return Track{}, ErrValidation
	}
	if s.store == nil || s.storage == nil {
		return Track{}, fmt.Errorf("music dependencies are not configured")
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return Track{}, fmt.Errorf("ensure bucket: %w", err)
	}

	objectKey, err := buildObjectKey(creatorID, "tracks", input.FileName)
	if err != nil {
		return Track{}, fmt.Errorf("build object key: %w", err)
	}
	if err := s.storage.PutObject(ctx, objectKey, input.Body, input.Size, orOctetStream(input.ContentType)); err != nil {
		return Track{}, fmt.Errorf("put audio object: %w", err)
	}

	var coverKey string
	if input.CoverBody != nil && input.CoverSize > 0 {
		coverKey, err = buildObjectKey(creatorID, "covers", input.CoverFileName)
		if err != nil {
			_ = s.storage.Delete(ctx, objectKey)
			return Track{}, fmt.Errorf("build cover key: %w", err)
		}
		if err := s.storage.PutObject(ctx, coverKey, input.CoverBody, input.CoverSize, orOctetStream(input.CoverContentType)); err != nil {
			_ = s.storage.Delete(ctx, objectKey)
			return Track{}, fmt.Errorf("put cover object: %w", err)
		}
	}

	record, err := s.store.Create(ctx, pgrepo.NewMusic{
		Title:       input.Title,
		Description: input.Description,
		ObjectKey:   objectKey,
		CoverKey:    coverKey,
		Genre:       input.Genre,
		CreatorID:   creatorID,
	})
	if err != nil {
		_ = s.storage.Delete(ctx, objectKey)
		if coverKey != "" {
			_ = s.storage.Delete(ctx, coverKey)
		}
		return Track{}, fmt.Errorf("create music record: %w", err)
	}

	return s.toTrack(ctx, record)
}

// ListPublic pages through public works. Both filters are optional; an
// unknown audit status is rejected rather than silently matching nothing.
func (s *Service) ListPublic(ctx context.Context, genre, auditStatus string, page, perPage int) (TrackPage, error) {
	if s.store == nil || s.storage == nil {
		return TrackPage{}, fmt.Errorf("music dependencies are not configured")
	}

	auditStatus = strings.TrimSpace(auditStatus)
	if auditStatus != "" {
		if _, ok := enums.ParseAuditStatus(auditStatus); !ok {
			return TrackPage{}, ErrValidation
		}
	}

	page, perPage = normalizePage(page, perPage)
	records, total, err := s.store.ListPublic(ctx, pgrepo.PublicMusicFilter{
		Genre:       genre,
		AuditStatus: auditStatus,
		Limit:       perPage,
		Offset:      (page - 1) * perPage,
	})
	if err != nil {
		return TrackPage{}, fmt.Errorf("list public music: %w", err)
	}

	items := make([]Track, 0, len(records))
	for _, record := range records {
		track, err := s.toTrack(ctx, record)
		if err != nil {
			return TrackPage{}, err
		}
		items = append(items, track)
	}

	return TrackPage{
		Items: items,
		Pagination: Pagination{
			Page:    page,
			PerPage: perPage,
			Total:   total,
			Pages:   pageCount(total, perPage),
		},
	}, nil
}

// Detail returns a single work. Non-public works are visible only to their
// creator and to admins.
func (s *Service) Detail(ctx context.Context, viewer Viewer, musicID int64) (Track, error) {
	if s.store == nil || s.storage == nil {
		return Track{}, fmt.Errorf("music dependencies are not configured")
	}

	record, err := s.store.GetByID(ctx, musicID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMusicNotFound) {
			return Track{}, ErrMusicNotFound
		}
		return Track{}, fmt.Errorf("get music: %w", err)
	}

	if !record.IsPublic && viewer.ID != record.CreatorID && viewer.Role != string(enums.RoleAdmin) {
		return Track{}, ErrForbidden
	}

	return s.toTrack(ctx, record)
}

func (s *Service) toTrack(ctx context.Context, record model.Music) (Track, error) {
	track := Track{
		ID:          record.ID,
		Title:       record.Title,
		Description: record.Description,
		Genre:       record.Genre,
		CreatorID:   record.CreatorID,
		AuditStatus: record.AuditStatus,
		IsPublic:    record.IsPublic,
		UploadedAt:  record.UploadedAt,
	}

	streamURL, err := s.storage.PresignGet(ctx, record.ObjectKey, signedURLTTL)
	if err != nil {
		return Track{}, fmt.Errorf("presign stream url: %w", err)
	}
	track.StreamURL = streamURL

	if record.CoverKey != "" {
		coverURL, err := s.storage.PresignGet(ctx, record.CoverKey, signedURLTTL)
		if err != nil {
			return Track{}, fmt.Errorf("presign cover url: %w", err)
		}
		track.CoverURL = coverURL
	}

	return track, nil
}

func buildObjectKey(creatorID int64, kind, fileName string) (string, error) {
	rnd := make([]byte, 8)
	if _, err := rand.Read(rnd); err != nil {
		return "", err
	}

	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	if ext == "" {
		ext = ".bin"
	}

	stamp := time.Now().UTC().Format("20060102T150405")
	return fmt.Sprintf("creators/%d/%s/%s_%s%s", creatorID, kind, stamp, hex.EncodeToString(rnd), ext), nil
}

func orOctetStream(contentType string) string {
	if strings.TrimSpace(contentType) == "" {
		return "application/octet-stream"
	}
	return contentType
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

func pageCount(total int64, perPage int) int64 {
	if total == 0 {
		return 0
	}
	return (total + int64(perPage) - 1) / int64(perPage)
}
