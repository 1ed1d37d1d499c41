package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{"invalid credentials", ErrInvalidCredentials, KindDenied},
		{"not verified", ErrUserNotVerified, KindDenied},
		{"refresh failed", ErrRefreshFailed, KindDenied},
		{"reset failed", ErrResetFailed, KindDenied},
		{"user not found", ErrUserNotFound, KindNotFound},
		{"session not found", ErrSessionNotFound, KindNotFound},
		{"user exists", ErrUserAlreadyExists, KindConflict},
		{"unknown error", errors.New("db gone away"), KindInternal},
		{"wrapped denied", fmt.Errorf("service error: %w", ErrTokenInvalid), KindDenied},
		{"wrapped not found", fmt.Errorf("repo error: %w", ErrUserNotFound), KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, KindOf(tt.err))
		})
	}
}
