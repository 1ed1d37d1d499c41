package handlers

import (
	"errors"
	"net/http"

	"github.com/eliyaaki/auth-service/internal/apperrors"
	"github.com/eliyaaki/auth-service/internal/handlers/render"
	"github.com/eliyaaki/auth-service/internal/logger"
)

// RefreshHeader carries the refresh token on refresh and logout requests
const RefreshHeader = "x-refresh"

type AuthHandler struct {
	authService authService
	logger      logger.Logger
}

func NewAuth(authService authService, l logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      l,
	}
}

func (h *AuthHandler) createSession(w http.ResponseWriter, r *http.Request) {
	type SessionRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	type SessionResponse struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}

	data, err := render.BindAndValidate[SessionRequest](w, r)
	if err != nil {
		return
	}

	pair, err := h.authService.Authenticate(r.Context(), data.Email, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserNotVerified):
			render.ServiceError(w, "Please verify your email", http.StatusBadRequest)
		case apperrors.KindOf(err) == apperrors.KindDenied:
			render.ServiceError(w, "Invalid email or password", http.StatusUnauthorized)
		default:
			h.logger.Error("login failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, SessionResponse{
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
	})
}

func (h *AuthHandler) refreshSession(w http.ResponseWriter, r *http.Request) {
	type RefreshResponse struct {
		AccessToken string `json:"accessToken"`
	}

	refresh := r.Header.Get(RefreshHeader)
	if refresh == "" {
		render.ServiceError(w, "Refresh token doesn't exist at all", http.StatusUnauthorized)
		return
	}

	access, err := h.authService.Refresh(r.Context(), refresh)
	if err != nil {
		switch apperrors.KindOf(err) {
		case apperrors.KindDenied, apperrors.KindNotFound:
			render.ServiceError(w, "Could not refresh access token", http.StatusUnauthorized)
		default:
			h.logger.Error("token refresh failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, RefreshResponse{AccessToken: access.Value})
}

func (h *AuthHandler) deleteSession(w http.ResponseWriter, r *http.Request) {
	// Both tokens are reported null so clients drop their copies.
	// The session row stays in the store with valid=false
	type LogoutResponse struct {
		AccessToken  *string `json:"accessToken"`
		RefreshToken *string `json:"refreshToken"`
	}

	refresh := r.Header.Get(RefreshHeader)
	if refresh == "" {
		render.ServiceError(w, "Refresh token doesn't exist at all", http.StatusUnauthorized)
		return
	}

	err := h.authService.Logout(r.Context(), refresh)
	if err != nil {
		switch apperrors.KindOf(err) {
		case apperrors.KindDenied, apperrors.KindNotFound:
			render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		default:
			h.logger.Error("logout failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, LogoutResponse{AccessToken: nil, RefreshToken: nil})
}
