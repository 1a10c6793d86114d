package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/Henjin888/hejin-music-platform/internal/services/auth"
	musicsvc "github.com/Henjin888/hejin-music-platform/internal/services/music"
	"github.com/Henjin888/hejin-music-platform/internal/transport/http/dto"
	httperrors "github.com/Henjin888/hejin-music-platform/internal/transport/http/errors"
)

const maxTrackUploadSize = 100 << 20 // 100 MiB, audio plus optional cover

type MusicHandler struct {
	service *musicsvc.Service
}

func NewMusicHandler(service *musicsvc.Service) *MusicHandler {
	return &MusicHandler{service: service}
}

func (h *MusicHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MUSIC_SERVICE_UNAVAILABLE", "music service is unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxTrackUploadSize)
	if err := r.ParseMultipartForm(maxTrackUploadSize); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "file is required")
		return
	}
	defer file.Close()

	if header == nil || header.Size <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "file is empty")
		return
	}

	input := musicsvc.UploadInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Genre:       r.FormValue("genre"),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
		Size:        header.Size,
	}

	if cover, coverHeader, err := r.FormFile("cover"); err == nil {
		defer cover.Close()
		if coverHeader != nil && coverHeader.Size > 0 {
			input.CoverFileName = coverHeader.Filename
			input.CoverContentType = coverHeader.Header.Get("Content-Type")
			input.CoverBody = cover
			input.CoverSize = coverHeader.Size
		}
	}

	track, err := h.service.Upload(r.Context(), identity.UserID, input)
	if err != nil {
		handleMusicError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, toTrackResponse(track))
}

func (h *MusicHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MUSIC_SERVICE_UNAVAILABLE", "music service is unavailable")
		return
	}

	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	perPage, _ := strconv.Atoi(query.Get("per_page"))

	result, err := h.service.ListPublic(r.Context(), query.Get("genre"), query.Get("audit_status"), page, perPage)
	if err != nil {
		handleMusicError(w, err)
		return
	}

	items := make([]dto.TrackResponse, 0, len(result.Items))
	for _, track := range result.Items {
		items = append(items, toTrackResponse(track))
	}

	httperrors.Write(w, http.StatusOK, dto.TrackListResponse{
		Items: items,
		Pagination: dto.PaginationResponse{
			Page:    result.Pagination.Page,
			PerPage: result.Pagination.PerPage,
			Total:   result.Pagination.Total,
			Pages:   result.Pagination.Pages,
		},
	})
}

func (h *MusicHandler) Detail(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MUSIC_SERVICE_UNAVAILABLE", "music service is unavailable")
		return
	}

	musicID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || musicID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid music id")
		return
	}

	// Anonymous viewers see public works only.
	var viewer musicsvc.Viewer
	if identity, ok := authsvc.IdentityFromContext(r.Context()); ok {
		viewer = musicsvc.Viewer{ID: identity.UserID, Role: identity.Role}
	}

	track, err := h.service.Detail(r.Context(), viewer, musicID)
	if err != nil {
		handleMusicError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, toTrackResponse(track))
}

func toTrackResponse(track musicsvc.Track) dto.TrackResponse {
	return dto.TrackResponse{
		ID:          track.ID,
		Title:       track.Title,
		Description: track.Description,
		Genre:       track.Genre,
		CreatorID:   track.CreatorID,
		AuditStatus: string(track.AuditStatus),
		IsPublic:    track.IsPublic,
		UploadedAt:  track.UploadedAt,
		StreamURL:   track.StreamURL,
		CoverURL:    track.CoverURL,
	}
}

func handleMusicError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, musicsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid music request")
	case errors.Is(err, musicsvc.ErrMusicNotFound):
		writeNotFound(w, "NOT_FOUND", "music not found")
	case errors.Is(err, musicsvc.ErrForbidden):
		writeForbidden(w, "FORBIDDEN", "music is not public")
	default:
		writeInternal(w, "INTERNAL_ERROR", "music operation failed")
	}
}
