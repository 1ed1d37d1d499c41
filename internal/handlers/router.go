package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/eliyaaki/auth-service/internal/handlers/middleware"
	"github.com/eliyaaki/auth-service/internal/logger"
	"github.com/eliyaaki/auth-service/internal/models"
)

// Liveness endpoint for load balancers and deploy probes
func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	userService userService,
	logger logger.Logger,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(authService)
	withAuth := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(h)
	}

	auth := NewAuth(authService, logger)
	users := NewUser(userService, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/sessions", auth.createSession)
	mux.HandleFunc("POST /api/auth/sessions/refresh", auth.refreshSession)
	mux.HandleFunc("DELETE /api/auth/sessions", auth.deleteSession)

	mux.HandleFunc("POST /api/users", users.register)
	mux.HandleFunc("POST /api/users/verify/{id}/{code}", users.verify)
	mux.HandleFunc("POST /api/users/forgotpassword", users.forgotPassword)
	mux.HandleFunc("POST /api/users/resetpassword/{id}/{code}", users.resetPassword)

	mux.Handle("GET /api/users", withAuth(users.list))
	mux.Handle("GET /api/users/me", withAuth(users.me))
	mux.Handle("GET /api/users/getUserByEmail/{email}", withAuth(users.getByEmail))

	mux.HandleFunc("GET /healthCheck", healthCheck)

	handler := chain(mux,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

type authService interface {
	// Check credentials, open a session and issue token pair
	// Has to return apperrors.ErrInvalidCredentials on bad email or password
	// and apperrors.ErrUserNotVerified for valid but unverified accounts
	Authenticate(ctx context.Context, email string, password string) (models.TokenPair, error)

	// Exchange a refresh token for a fresh access token.
	// Any failure (bad token, revoked or missing session) is apperrors.ErrRefreshFailed
	Refresh(ctx context.Context, refreshToken string) (models.IssuedToken, error)

	// Invalidate the session behind the refresh token
	Logout(ctx context.Context, refreshToken string) error

	// Resolve an access token into its user. Used by the auth middleware
	UserFromToken(ctx context.Context, accessToken string) (models.User, error)
}

type userService interface {
	// Register new user. Has to return apperrors.ErrUserAlreadyExists
	// if the email is taken
	Register(ctx context.Context, name string, email string, password string) (models.User, error)

	// Confirm email ownership with the code sent at registration
	Verify(ctx context.Context, id uuid.UUID, code string) error

	// Issue a one time password reset code and mail it
	RequestPasswordReset(ctx context.Context, email string) error

	// Change the password if the reset code matches.
	// Every invalid case is apperrors.ErrResetFailed
	ResetPassword(ctx context.Context, id uuid.UUID, code string, password string) error

	// Look up a single user. Has to return apperrors.ErrUserNotFound
	// if no account with that email exists
	GetByEmail(ctx context.Context, email string) (models.User, error)

	List(ctx context.Context) ([]models.User, error)
}
