package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/eliyaaki/auth-service/internal/apperrors"
	"github.com/eliyaaki/auth-service/internal/repository"
	"github.com/eliyaaki/auth-service/internal/testutil"
)

func Test_Storage_InTx(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	params := repository.CreateUserParams{
		Name:             "eli",
		Email:            "eli@example.com",
		HashedPassword:   "hashed-password",
		VerificationCode: "verification-code",
	}

	t.Run("commit on success", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := NewStorage(tx)

			err := s.InTx(t.Context(), func(st repository.Storage) error {
				_, err := st.User().CreateUser(t.Context(), params)
				return err
			})
			require.NoError(t, err)

			_, err = s.User().GetUserByEmail(t.Context(), "eli@example.com")
			require.NoError(t, err, "committed changes should be visible outside the transaction")
		})
	})

	t.Run("rollback on error", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := NewStorage(tx)

			boom := errors.New("boom")
			err := s.InTx(t.Context(), func(st repository.Storage) error {
				if _, err := st.User().CreateUser(t.Context(), params); err != nil {
					return err
				}
				return boom
			})
			require.ErrorIs(t, err, boom, "fn error should come back unwrapped")

			_, err = s.User().GetUserByEmail(t.Context(), "eli@example.com")
			require.ErrorIs(t, err, apperrors.ErrUserNotFound, "rolled back changes must not be visible")
		})
	})
}
