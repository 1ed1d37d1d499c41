package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/eliyaaki/auth-service/internal/apperrors"
	"github.com/eliyaaki/auth-service/internal/handlers/render"
	"github.com/eliyaaki/auth-service/internal/handlers/userctx"
	"github.com/eliyaaki/auth-service/internal/logger"
	"github.com/eliyaaki/auth-service/internal/models"
)

type UserHandler struct {
	userService userService
	logger      logger.Logger
}

func NewUser(userService userService, l logger.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      l,
	}
}

func (h *UserHandler) register(w http.ResponseWriter, r *http.Request) {
	type RegisterRequest struct {
		Name                 string `json:"name" validate:"required"`
		Email                string `json:"email" validate:"required,email"`
		Password             string `json:"password" validate:"required,min=6"`
		PasswordConfirmation string `json:"passwordConfirmation" validate:"required,eqfield=Password"`
	}

	data, err := render.BindAndValidate[RegisterRequest](w, r)
	if err != nil {
		return
	}

	user, err := h.userService.Register(r.Context(), data.Name, data.Email, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "User already exists", http.StatusConflict)
		default:
			h.logger.Error("user registration failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSONWithStatus(w, user.Public(), http.StatusCreated)
}

func (h *UserHandler) verify(w http.ResponseWriter, r *http.Request) {
	type VerifyResponse struct {
		Message string `json:"message"`
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, "Could not verify user", http.StatusBadRequest)
		return
	}

	err = h.userService.Verify(r.Context(), id, r.PathValue("code"))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAlreadyVerified):
			render.ServiceError(w, "User is already verified", http.StatusBadRequest)
		case apperrors.KindOf(err) == apperrors.KindNotFound:
			render.ServiceError(w, "Could not verify user", http.StatusNotFound)
		case apperrors.KindOf(err) == apperrors.KindDenied:
			render.ServiceError(w, "Could not verify user", http.StatusBadRequest)
		default:
			h.logger.Error("user verification failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, VerifyResponse{Message: "User verified successfully"})
}

func (h *UserHandler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	type ForgotPasswordRequest struct {
		Email string `json:"email" validate:"required,email"`
	}
	type ForgotPasswordResponse struct {
		Message string `json:"message"`
	}

	data, err := render.BindAndValidate[ForgotPasswordRequest](w, r)
	if err != nil {
		return
	}

	// Unknown emails get the same response as known ones, so the
	// endpoint can not be used to probe which accounts exist
	err = h.userService.RequestPasswordReset(r.Context(), data.Email)
	switch {
	case err == nil, errors.Is(err, apperrors.ErrUserNotFound):
		render.JSON(w, ForgotPasswordResponse{
			Message: "If a user with that email is registered you will receive a password reset email",
		})
	case errors.Is(err, apperrors.ErrUserNotVerified):
		render.ServiceError(w, "Please verify your email", http.StatusBadRequest)
	default:
		h.logger.Error("password reset request failed", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *UserHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	type ResetPasswordRequest struct {
		Password             string `json:"password" validate:"required,min=6"`
		PasswordConfirmation string `json:"passwordConfirmation" validate:"required,eqfield=Password"`
	}
	type ResetPasswordResponse struct {
		Message string `json:"message"`
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, "Could not reset password", http.StatusBadRequest)
		return
	}

	data, err := render.BindAndValidate[ResetPasswordRequest](w, r)
	if err != nil {
		return
	}

	err = h.userService.ResetPassword(r.Context(), id, r.PathValue("code"), data.Password)
	if err != nil {
		switch apperrors.KindOf(err) {
		case apperrors.KindDenied, apperrors.KindNotFound:
			// One generic answer for every invalid case, so the
			// endpoint does not work as a code-guessing oracle
			render.ServiceError(w, "Could not reset password", http.StatusBadRequest)
		default:
			h.logger.Error("password reset failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, ResetPasswordResponse{Message: "Your password has been reset successfully"})
}

func (h *UserHandler) getByEmail(w http.ResponseWriter, r *http.Request) {
	type GetByEmailResponse struct {
		User models.PublicUser `json:"user"`
	}

	user, err := h.userService.GetByEmail(r.Context(), r.PathValue("email"))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		default:
			h.logger.Error("user lookup failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, GetByEmailResponse{User: user.Public()})
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request) {
	type ListResponse struct {
		Users []models.PublicUser `json:"users"`
	}

	users, err := h.userService.List(r.Context())
	if err != nil {
		h.logger.Error("user listing failed", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	public := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}

	render.JSON(w, ListResponse{Users: public})
}

func (h *UserHandler) me(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, user.Public())
}
