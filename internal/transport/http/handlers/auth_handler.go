package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	authsvc "github.com/Henjin888/hejin-music-platform/internal/services/auth"
	userssvc "github.com/Henjin888/hejin-music-platform/internal/services/users"
	"github.com/Henjin888/hejin-music-platform/internal/transport/http/dto"
	httperrors "github.com/Henjin888/hejin-music-platform/internal/transport/http/errors"
)

type AuthHandler struct {
	users *userssvc.Service
	auth  *authsvc.Service
}

func NewAuthHandler(users *userssvc.Service, auth *authsvc.Service) *AuthHandler {
	return &AuthHandler{users: users, auth: auth}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h.users == nil {
		writeInternal(w, "USER_SERVICE_UNAVAILABLE", "user service is unavailable")
		return
	}

	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		handleUsersError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.users == nil {
		writeInternal(w, "USER_SERVICE_UNAVAILABLE", "user service is unavailable")
		return
	}

	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	res, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		handleUsersError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.AuthTokensResponse{
		AccessToken:  res.Auth.AccessToken,
		RefreshToken: res.Auth.RefreshToken,
		ExpiresInSec: maxInt64(0, int64(time.Until(res.Auth.AccessExpires).Seconds())),
		Me: dto.AuthMeResponse{
			ID:       res.User.ID,
			Username: res.User.Username,
			Role:     string(res.User.Role),
		},
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	res, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.AuthTokensResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresInSec: maxInt64(0, int64(time.Until(res.AccessExpires).Seconds())),
		Me: dto.AuthMeResponse{
			ID:   res.Me.ID,
			Role: res.Me.Role,
		},
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	if err := h.auth.Logout(r.Context(), identity.SID); err != nil {
		handleAuthError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.LogoutResponse{OK: true})
}

func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	if err := h.auth.LogoutAll(r.Context(), identity.UserID); err != nil {
		handleAuthError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.LogoutResponse{OK: true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if h.users == nil {
		writeInternal(w, "USER_SERVICE_UNAVAILABLE", "user service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	user, err := h.users.Me(r.Context(), identity.UserID)
	if err != nil {
		handleUsersError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	})
}

func handleUsersError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, userssvc.ErrInvalidUsername),
		errors.Is(err, userssvc.ErrInvalidEmail),
		errors.Is(err, userssvc.ErrWeakPassword):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, userssvc.ErrUsernameTaken),
		errors.Is(err, userssvc.ErrEmailTaken):
		writeConflict(w, "CONFLICT", err.Error())
	case errors.Is(err, userssvc.ErrInvalidCredentials):
		writeUnauthorized(w, "UNAUTHORIZED", "invalid username or password")
	case errors.Is(err, userssvc.ErrUserNotFound):
		writeNotFound(w, "NOT_FOUND", "user not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authsvc.ErrInvalidInput):
		writeBadRequest(w, "INVALID_REQUEST", "request validation failed")
	case errors.Is(err, authsvc.ErrUnauthorized):
		writeUnauthorized(w, "UNAUTHORIZED", "authentication failed")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeForbidden(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusForbidden, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeConflict(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusConflict, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
