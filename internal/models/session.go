package models

import (
	"time"

	"github.com/google/uuid"
)

// Session backs one refresh token grant. Revocation works by flipping
// Valid to false, the row is never deleted so the audit trail stays
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Valid     bool
	CreatedAt time.Time
}
