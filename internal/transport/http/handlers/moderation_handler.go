package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authsvc "github.com/Henjin888/hejin-music-platform/internal/services/auth"
	modsvc "github.com/Henjin888/hejin-music-platform/internal/services/moderation"
	ratesvc "github.com/Henjin888/hejin-music-platform/internal/services/rate"
	"github.com/Henjin888/hejin-music-platform/internal/transport/http/dto"
	httperrors "github.com/Henjin888/hejin-music-platform/internal/transport/http/errors"
)

type ModerationHandler struct {
	service *modsvc.Service
	limiter *ratesvc.Limiter
	logger  *zap.Logger
}

func NewModerationHandler(service *modsvc.Service, limiter *ratesvc.Limiter, logger *zap.Logger) *ModerationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModerationHandler{service: service, limiter: limiter, logger: logger}
}

func (h *ModerationHandler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	if h.limiter != nil {
		decision, err := h.limiter.Allow(r.Context(), ratesvc.ReportKey(identity.UserID))
		switch {
		case err != nil:
			// Fail open: a broken counter must not block reporting.
			h.logger.Warn("report rate limiter unavailable",
				zap.Int64("user_id", identity.UserID), zap.Error(err))
		case !decision.Allowed:
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
				Code:          "RATE_LIMITED",
				Message:       "too many reports, slow down",
				RetryAfterSec: int64(decision.RetryAfter.Seconds()),
			})
			return
		}
	}

	var req dto.SubmitReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	receipt, err := h.service.SubmitReport(r.Context(), identity.UserID, req.MusicID, req.Reason)
	if err != nil {
		handleModerationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.SubmitReportResponse{
		ReportID: receipt.ReportID,
		Status:   string(receipt.Status),
	})
}

func (h *ModerationHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	perPage, _ := strconv.Atoi(query.Get("per_page"))

	result, err := h.service.ListReports(r.Context(), identity.UserID, query.Get("status"), page, perPage)
	if err != nil {
		handleModerationError(w, err)
		return
	}

	items := make([]dto.ReportResponse, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, dto.ReportResponse{
			ID:               item.Report.ID,
			MusicID:          item.Report.MusicID,
			MusicTitle:       item.MusicTitle,
			CreatorUsername:  item.CreatorUsername,
			ReporterID:       item.Report.ReporterID,
			ReporterUsername: item.ReporterUsername,
			Reason:           item.Report.Reason,
			Status:           string(item.Report.Status),
			AdminComment:     item.Report.AdminComment,
			ProcessedBy:      item.Report.ProcessedBy,
			ProcessedAt:      item.Report.ProcessedAt,
			CreatedAt:        item.Report.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.ReportListResponse{
		Items:      items,
		Pagination: toPaginationResponse(result.Pagination),
	})
}

func (h *ModerationHandler) ProcessReport(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	reportID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || reportID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid report id")
		return
	}

	var req dto.ProcessReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	if err := h.service.ProcessReport(r.Context(), reportID, identity.UserID, req.Action, req.Comment); err != nil {
		handleModerationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *ModerationHandler) AddToBlacklist(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	var req dto.BlacklistRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	entry, err := h.service.AddToBlacklist(r.Context(), req.UserID, identity.UserID, req.Reason, req.EndAt)
	if err != nil {
		handleModerationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.BlacklistEntryResponse{
		ID:      entry.ID,
		UserID:  entry.UserID,
		Reason:  entry.Reason,
		StartAt: entry.StartAt,
		EndAt:   entry.EndAt,
		Active:  entry.IsActive,
	})
}

func (h *ModerationHandler) ListBlacklist(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	perPage, _ := strconv.Atoi(query.Get("per_page"))

	result, err := h.service.ListBlacklist(r.Context(), identity.UserID, page, perPage)
	if err != nil {
		handleModerationError(w, err)
		return
	}

	items := make([]dto.BlacklistEntryResponse, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, dto.BlacklistEntryResponse{
			ID:       item.Entry.ID,
			UserID:   item.Entry.UserID,
			Username: item.Username,
			Email:    item.Email,
			Reason:   item.Entry.Reason,
			StartAt:  item.Entry.StartAt,
			EndAt:    item.Entry.EndAt,
			Active:   item.CurrentlyActive,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.BlacklistListResponse{
		Items:      items,
		Pagination: toPaginationResponse(result.Pagination),
	})
}

func (h *ModerationHandler) AuditMusic(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	musicID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || musicID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid music id")
		return
	}

	var req dto.AuditMusicRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	if err := h.service.AuditMusic(r.Context(), musicID, identity.UserID, req.Action, req.Comment); err != nil {
		handleModerationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *ModerationHandler) AddContentFilter(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	var req dto.ContentFilterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	filter, err := h.service.AddContentFilter(r.Context(), identity.UserID, req.Keyword, req.FilterType, req.Action)
	if err != nil {
		handleModerationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.ContentFilterResponse{
		ID:         filter.ID,
		Keyword:    filter.Keyword,
		FilterType: string(filter.Type),
		Action:     string(filter.Action),
		IsActive:   filter.IsActive,
		CreatedAt:  filter.CreatedAt,
	})
}

func toPaginationResponse(p modsvc.Pagination) dto.PaginationResponse {
	return dto.PaginationResponse{
		Page:    p.Page,
		PerPage: p.PerPage,
		Total:   p.Total,
		Pages:   p.Pages,
	}
}

func handleModerationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, modsvc.ErrValidation),
		errors.Is(err, modsvc.ErrInvalidAction),
		errors.Is(err, modsvc.ErrInvalidStatus),
		errors.Is(err, modsvc.ErrInvalidFilterType),
		errors.Is(err, modsvc.ErrInvalidFilterAction):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, modsvc.ErrBlacklisted):
		writeForbidden(w, "BLACKLISTED", "blacklisted users cannot submit reports")
	case errors.Is(err, modsvc.ErrForbidden):
		writeForbidden(w, "FORBIDDEN", "admin role required")
	case errors.Is(err, modsvc.ErrUserNotFound):
		writeNotFound(w, "NOT_FOUND", "user not found")
	case errors.Is(err, modsvc.ErrMusicNotFound):
		writeNotFound(w, "NOT_FOUND", "music not found")
	case errors.Is(err, modsvc.ErrReportNotFound):
		writeNotFound(w, "NOT_FOUND", "report not found")
	case errors.Is(err, modsvc.ErrDuplicateReport):
		writeConflict(w, "DUPLICATE_REPORT", "a pending report for this work already exists")
	case errors.Is(err, modsvc.ErrAlreadyBlacklisted):
		writeConflict(w, "ALREADY_BLACKLISTED", "user is already blacklisted")
	case errors.Is(err, modsvc.ErrReportAlreadyProcessed):
		writeConflict(w, "ALREADY_PROCESSED", "report was already processed")
	default:
		writeInternal(w, "INTERNAL_ERROR", "moderation operation failed")
	}
}
