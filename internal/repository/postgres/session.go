package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/eliyaaki/auth-service/internal/apperrors"
	"github.com/eliyaaki/auth-service/internal/models"
)

type SessionRepo struct {
	DB DBTX
}

const createSession = `-- name: CreateSession
INSERT INTO sessions (id, user_id)
VALUES ($1, $2)
RETURNING id, user_id, valid, created_at
`

func (r *SessionRepo) CreateSession(ctx context.Context, userID uuid.UUID) (models.Session, error) {
	rows, _ := r.DB.Query(ctx, createSession, uuid.New(), userID)
	session, err := pgx.CollectOneRow(rows, rowToSession)
	if err != nil {
		return session, fmt.Errorf("db error: %w", err)
	}

	return session, nil
}

const getSessionByID = `-- name: GetSessionByID
SELECT id, user_id, valid, created_at
FROM sessions
WHERE id = $1
`

// Get session even if it was invalidated: the caller decides
// what an invalid session means
func (r *SessionRepo) GetSessionByID(ctx context.Context, id uuid.UUID) (models.Session, error) {
	rows, _ := r.DB.Query(ctx, getSessionByID, id)
	session, err := pgx.CollectOneRow(rows, rowToSession)

	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, pgx.ErrNoRows):
		return session, apperrors.ErrSessionNotFound
	default:
		return session, fmt.Errorf("db error: %w", err)
	}
}

const invalidateSession = `-- name: InvalidateSession
UPDATE sessions
SET valid = FALSE
WHERE id = $1
`

// Invalidate session. Sessions are never resurrected so there is
// no matching 'validate' statement
func (r *SessionRepo) InvalidateSession(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, invalidateSession, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSessionNotFound
	}

	return nil
}

func rowToSession(row pgx.CollectableRow) (models.Session, error) {
	var s models.Session
	err := row.Scan(&s.ID, &s.UserID, &s.Valid, &s.CreatedAt)
	return s, err
}
