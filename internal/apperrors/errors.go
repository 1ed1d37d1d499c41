package apperrors

import (
	"errors"
)

// Well known service errors. Handlers match on them with errors.Is
// or classify them with KindOf, nothing else leaves the service layer
// with a user visible message.
var (
	ErrUserAlreadyExists = errors.New("user with this email already exists")
	ErrUserNotFound      = errors.New("user not found")

	// Same message for unknown email and wrong password on purpose:
	// a failed login must not reveal which of the two was wrong
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotVerified    = errors.New("please verify your email")

	ErrSessionNotFound = errors.New("session not found")
	ErrTokenInvalid    = errors.New("token is invalid or expired")

	// Refresh failures are collapsed into one message: a revoked session
	// must be indistinguishable from one that never existed
	ErrRefreshFailed = errors.New("could not refresh access token")

	ErrAlreadyVerified    = errors.New("user is already verified")
	ErrVerificationFailed = errors.New("user verification failed")

	// Reset failures are collapsed too, so the endpoint can't be used
	// as an oracle for guessing codes or user ids
	ErrResetFailed = errors.New("couldn't reset password")
)

type Kind int

const (
	// Authorization denied: bad credentials, unverified account,
	// invalid or revoked token, bad one-time code
	KindDenied Kind = iota

	// Referenced entity absent
	KindNotFound

	// Uniqueness conflict
	KindConflict

	// Everything else: signing faults, persistence faults
	KindInternal
)

// KindOf classifies err into the closed Kind set.
// Unrecognized errors are internal.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrUserNotVerified),
		errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrRefreshFailed),
		errors.Is(err, ErrAlreadyVerified),
		errors.Is(err, ErrVerificationFailed),
		errors.Is(err, ErrResetFailed):
		return KindDenied

	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrSessionNotFound):
		return KindNotFound

	case errors.Is(err, ErrUserAlreadyExists):
		return KindConflict

	default:
		return KindInternal
	}
}
