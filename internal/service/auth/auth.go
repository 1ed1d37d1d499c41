package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/eliyaaki/auth-service/internal/apperrors"
	"github.com/eliyaaki/auth-service/internal/models"
	"github.com/eliyaaki/auth-service/internal/repository"
	"github.com/eliyaaki/auth-service/internal/service/token"
)

type Config struct {
	// Hasher to compare user passwords. BcryptHasher when nil
	Hasher PasswordHasher
}

// Auth service: verifies credentials and drives the session/token
// state machine. The only stateful coordination point of the subsystem
type AuthService struct {
	codec  *token.Codec
	hasher PasswordHasher

	userRepo    repository.UserRepo
	sessionRepo repository.SessionRepo
}

func NewService(cfg Config, codec *token.Codec, userRepo repository.UserRepo, sessionRepo repository.SessionRepo) (*AuthService, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	if codec == nil {
		return nil, errors.New("token codec must not be nil")
	}
	if userRepo == nil || sessionRepo == nil {
		return nil, errors.New("repos must not be nil")
	}

	return &AuthService{
		codec:       codec,
		hasher:      hasher,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
	}, nil
}

// Authenticate user by email and password and issue a token pair.
// Unknown email and wrong password produce the same error.
// Every successful call creates a fresh session, so concurrent logins
// hold independently revocable refresh tokens
func (s *AuthService) Authenticate(ctx context.Context, email string, password string) (models.TokenPair, error) {
	var pair models.TokenPair

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		// Burn a full bcrypt comparison anyway so a missing account is
		// not detectable by response timing
		_ = s.hasher.Compare(dummyHash, password)
		return pair, apperrors.ErrInvalidCredentials
	case err != nil:
		return pair, fmt.Errorf("user lookup failed. Err: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return pair, apperrors.ErrInvalidCredentials
	}

	if !user.Verified {
		return pair, apperrors.ErrUserNotVerified
	}

	// Persist the session before signing anything: no token may refer
	// to a session that failed to land in storage
	session, err := s.sessionRepo.CreateSession(ctx, user.ID)
	if err != nil {
		return pair, fmt.Errorf("error while creating session. Err: %w", err)
	}

	access, err := s.codec.SignAccess(user)
	if err != nil {
		return pair, err
	}

	refresh, err := s.codec.SignRefresh(session.ID)
	if err != nil {
		return pair, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh mints a new access token from a refresh token.
// The token alone is not enough: the session it references must still
// exist and be valid. All failure causes collapse into ErrRefreshFailed,
// a revoked session must look exactly like one that never existed.
// The refresh token itself is not rotated
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (models.IssuedToken, error) {
	var issued models.IssuedToken

	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return issued, apperrors.ErrRefreshFailed
	}

	session, err := s.sessionRepo.GetSessionByID(ctx, claims.SessionID)
	switch {
	case errors.Is(err, apperrors.ErrSessionNotFound):
		return issued, apperrors.ErrRefreshFailed
	case err != nil:
		return issued, fmt.Errorf("session lookup failed. Err: %w", err)
	}

	if !session.Valid {
		return issued, apperrors.ErrRefreshFailed
	}

	user, err := s.userRepo.GetUserByID(ctx, session.UserID)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return issued, apperrors.ErrRefreshFailed
	case err != nil:
		return issued, fmt.Errorf("user lookup failed. Err: %w", err)
	}

	issued, err = s.codec.SignAccess(user)
	if err != nil {
		return issued, err
	}

	return issued, nil
}

// Logout invalidates the session behind the refresh token.
// The flipped flag is what makes every copy of the refresh token dead,
// its signature and expiry stay formally valid
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return apperrors.ErrRefreshFailed
	}

	err = s.sessionRepo.InvalidateSession(ctx, claims.SessionID)
	switch {
	case errors.Is(err, apperrors.ErrSessionNotFound):
		return apperrors.ErrRefreshFailed
	case err != nil:
		return fmt.Errorf("error while invalidating session. Err: %w", err)
	}

	return nil
}

// UserFromToken resolves an access token into the user it was minted for.
// Used by the auth middleware on every protected request
func (s *AuthService) UserFromToken(ctx context.Context, accessToken string) (models.User, error) {
	var user models.User

	claims, err := s.codec.VerifyAccess(accessToken)
	if err != nil {
		return user, apperrors.ErrTokenInvalid
	}

	user, err = s.userRepo.GetUserByID(ctx, claims.UserID)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return user, apperrors.ErrTokenInvalid
	case err != nil:
		return user, fmt.Errorf("user lookup failed. Err: %w", err)
	}

	return user, nil
}
