package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/eliyaaki/auth-service/internal/apperrors"
	"github.com/eliyaaki/auth-service/internal/models"
	"github.com/eliyaaki/auth-service/internal/repository"
)

type UserRepo struct {
	DB DBTX
}

const createUser = `-- name: CreateUser
INSERT INTO users (id, name, email, password_hash, verification_code)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at, name, email, password_hash, verified, verification_code, password_reset_code
`

func (r *UserRepo) CreateUser(ctx context.Context, arg repository.CreateUserParams) (models.User, error) {
	rows, _ := r.DB.Query(ctx, createUser, uuid.New(), arg.Name, arg.Email, arg.HashedPassword, arg.VerificationCode)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user, apperrors.ErrUserAlreadyExists
		}

		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByID = `-- name: GetUserByID
SELECT id, created_at, name, email, password_hash, verified, verification_code, password_reset_code
FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, id)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

const getUserByEmail = `-- name: GetUserByEmail
SELECT id, created_at, name, email, password_hash, verified, verification_code, password_reset_code
FROM users
WHERE email = $1
`

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByEmail, email)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

const listUsers = `-- name: ListUsers
SELECT id, created_at, name, email, password_hash, verified, verification_code, password_reset_code
FROM users
ORDER BY created_at
`

func (r *UserRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, _ := r.DB.Query(ctx, listUsers)
	users, err := pgx.CollectRows(rows, rowToUser)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return users, nil
}

const markVerified = `-- name: MarkVerified only if not verified yet
UPDATE users
SET verified = TRUE
WHERE id = $1 AND verified = FALSE
RETURNING id, created_at, name, email, password_hash, verified, verification_code, password_reset_code
`

// Mark user verified
// The conditional update makes the transition happen exactly once
func (r *UserRepo) MarkVerified(ctx context.Context, id uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, markVerified, id)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		// Either the user is missing or verified already, look closer
		existing, getErr := r.GetUserByID(ctx, id)
		if getErr != nil {
			return user, getErr
		}
		if existing.Verified {
			return existing, apperrors.ErrAlreadyVerified
		}
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

const setResetCode = `-- name: SetPasswordResetCode overwriting pending one
UPDATE users
SET password_reset_code = $2
WHERE id = $1
`

func (r *UserRepo) SetPasswordResetCode(ctx context.Context, id uuid.UUID, code string) error {
	tag, err := r.DB.Exec(ctx, setResetCode, id, code)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

const resetPassword = `-- name: ResetPassword and consume the code in one statement
UPDATE users
SET password_hash = $3, password_reset_code = NULL
WHERE id = $1 AND password_reset_code = $2
`

// Change password and clear the one-time code atomically.
// The WHERE clause covers every invalid case at once: missing user,
// no pending code and code mismatch all affect zero rows
func (r *UserRepo) ResetPassword(ctx context.Context, id uuid.UUID, code string, hashedPassword string) error {
	tag, err := r.DB.Exec(ctx, resetPassword, id, code, hashedPassword)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrResetFailed
	}

	return nil
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Name, &u.Email, &u.HashedPassword, &u.Verified, &u.VerificationCode, &u.PasswordResetCode)
	return u, err
}
