package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/eliyaaki/auth-service/internal/models"
)

type CreateUserParams struct {
	Name             string
	Email            string
	HashedPassword   string
	VerificationCode string
}

// User repository interface
type UserRepo interface {
	// Create user in unverified state
	// If user with the same email exists must return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	ListUsers(ctx context.Context) ([]models.User, error)

	// Mark user verified. Works exactly once:
	// if the user is verified already must return apperrors.ErrAlreadyVerified
	MarkVerified(ctx context.Context, id uuid.UUID) (models.User, error)

	// Store a pending password reset code, overwriting any previous one
	SetPasswordResetCode(ctx context.Context, id uuid.UUID, code string) error

	// Set the new password hash and clear the reset code in one update,
	// only if the stored code equals the given one.
	// On no match (user missing, no pending code, wrong code) must
	// return apperrors.ErrResetFailed without telling which case it was
	ResetPassword(ctx context.Context, id uuid.UUID, code string, hashedPassword string) error
}

// Session repository interface
type SessionRepo interface {
	// Create a fresh valid session for the user
	CreateSession(ctx context.Context, userID uuid.UUID) (models.Session, error)

	// Get session by id even if it was invalidated
	// If not found must return apperrors.ErrSessionNotFound
	GetSessionByID(ctx context.Context, id uuid.UUID) (models.Session, error)

	// Flip session to invalid. Idempotent, sessions are never deleted
	InvalidateSession(ctx context.Context, id uuid.UUID) error
}

type Storage interface {
	User() UserRepo
	Session() SessionRepo

	InTx(ctx context.Context, fn func(Storage) error) error
}
