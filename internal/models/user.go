package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Name           string
	Email          string
	HashedPassword string

	// Verified is false until the user proves email ownership
	// with the verification code issued at registration
	Verified         bool
	VerificationCode string

	// PasswordResetCode is nil unless a reset was requested.
	// Cleared together with the password change, in one update.
	PasswordResetCode *string
}

// PublicUser is the projection of User that is safe to expose:
// no password hash, no verification or reset codes
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Verified  bool      `json:"verified"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		CreatedAt: u.CreatedAt,
		Name:      u.Name,
		Email:     u.Email,
		Verified:  u.Verified,
	}
}
