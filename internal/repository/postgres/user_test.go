package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliyaaki/auth-service/internal/apperrors"
	"github.com/eliyaaki/auth-service/internal/repository"
	"github.com/eliyaaki/auth-service/internal/testutil"
)

func Test_UserRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	createParams := repository.CreateUserParams{
		Name:             "eli",
		Email:            "eli@example.com",
		HashedPassword:   "hashedpassword123",
		VerificationCode: "verification-code",
	}

	t.Run("create user ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			user, err := r.CreateUser(t.Context(), createParams)

			require.NoError(t, err)
			assert.Equal(t, "eli", user.Name)
			assert.Equal(t, "eli@example.com", user.Email)
			assert.Equal(t, "hashedpassword123", user.HashedPassword)
			assert.Equal(t, "verification-code", user.VerificationCode)
			assert.False(t, user.Verified, "user should start unverified")
			assert.Nil(t, user.PasswordResetCode)
			assert.WithinDuration(t, time.Now(), user.CreatedAt, time.Second, "CreatedAt should be recent")
		})
	})

	t.Run("create duplicate email fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.CreateUser(t.Context(), createParams)
			require.NoError(t, err)

			_, err = r.CreateUser(t.Context(), createParams)
			require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		})
	})

	t.Run("get user by id ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), createParams)
			require.NoError(t, err)

			got, err := r.GetUserByID(t.Context(), created.ID)

			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
			assert.Equal(t, created.Email, got.Email)
			assert.Equal(t, created.HashedPassword, got.HashedPassword)
		})
	})

	t.Run("get user by id not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.GetUserByID(t.Context(), uuid.New())

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound, "should return well known error")
		})
	})

	t.Run("get user by email ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), createParams)
			require.NoError(t, err)

			got, err := r.GetUserByEmail(t.Context(), created.Email)

			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
		})
	})

	t.Run("get user by email not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.GetUserByEmail(t.Context(), "nobody@example.com")

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("list users", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.CreateUser(t.Context(), createParams)
			require.NoError(t, err)

			other := createParams
			other.Email = "other@example.com"
			_, err = r.CreateUser(t.Context(), other)
			require.NoError(t, err)

			users, err := r.ListUsers(t.Context())
			require.NoError(t, err)
			assert.Len(t, users, 2)
		})
	})

	t.Run("mark verified", func(t *testing.T) {
		t.Run("flips flag once", func(t *testing.T) {
			testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
				r := UserRepo{DB: tx}
				created, err := r.CreateUser(t.Context(), createParams)
				require.NoError(t, err)

				user, err := r.MarkVerified(t.Context(), created.ID)
				require.NoError(t, err)
				assert.True(t, user.Verified)

				_, err = r.MarkVerified(t.Context(), created.ID)
				require.ErrorIs(t, err, apperrors.ErrAlreadyVerified, "second transition must not happen")
			})
		})

		t.Run("unknown user", func(t *testing.T) {
			testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
				r := UserRepo{DB: tx}

				_, err := r.MarkVerified(t.Context(), uuid.New())
				require.ErrorIs(t, err, apperrors.ErrUserNotFound)
			})
		})
	})

	t.Run("reset password", func(t *testing.T) {
		t.Run("pending code consumed atomically", func(t *testing.T) {
			testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
				r := UserRepo{DB: tx}
				created, err := r.CreateUser(t.Context(), createParams)
				require.NoError(t, err)

				require.NoError(t, r.SetPasswordResetCode(t.Context(), created.ID, "reset-code"))

				err = r.ResetPassword(t.Context(), created.ID, "reset-code", "newhash")
				require.NoError(t, err)

				got, err := r.GetUserByID(t.Context(), created.ID)
				require.NoError(t, err)
				assert.Equal(t, "newhash", got.HashedPassword)
				assert.Nil(t, got.PasswordResetCode, "code must be cleared in the same update")

				// The very same code again
				err = r.ResetPassword(t.Context(), created.ID, "reset-code", "anotherhash")
				require.ErrorIs(t, err, apperrors.ErrResetFailed)
			})
		})

		t.Run("set code overwrites pending one", func(t *testing.T) {
			testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
				r := UserRepo{DB: tx}
				created, err := r.CreateUser(t.Context(), createParams)
				require.NoError(t, err)

				require.NoError(t, r.SetPasswordResetCode(t.Context(), created.ID, "first"))
				require.NoError(t, r.SetPasswordResetCode(t.Context(), created.ID, "second"))

				err = r.ResetPassword(t.Context(), created.ID, "first", "newhash")
				require.ErrorIs(t, err, apperrors.ErrResetFailed, "superseded code must not work")

				err = r.ResetPassword(t.Context(), created.ID, "second", "newhash")
				require.NoError(t, err)
			})
		})

		t.Run("set code for unknown user", func(t *testing.T) {
			testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
				r := UserRepo{DB: tx}

				err := r.SetPasswordResetCode(t.Context(), uuid.New(), "code")
				require.ErrorIs(t, err, apperrors.ErrUserNotFound)
			})
		})

		tests := []struct {
			name string
			code string
		}{
			{"wrong code", "wrong"},
			{"empty code", ""},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
					r := UserRepo{DB: tx}
					created, err := r.CreateUser(t.Context(), createParams)
					require.NoError(t, err)
					require.NoError(t, r.SetPasswordResetCode(t.Context(), created.ID, "reset-code"))

					err = r.ResetPassword(t.Context(), created.ID, tt.code, "newhash")
					require.ErrorIs(t, err, apperrors.ErrResetFailed)

					got, err := r.GetUserByID(t.Context(), created.ID)
					require.NoError(t, err)
					assert.Equal(t, "hashedpassword123", got.HashedPassword, "password must stay untouched")
					require.NotNil(t, got.PasswordResetCode)
					assert.Equal(t, "reset-code", *got.PasswordResetCode, "pending code must stay untouched")
				})
			})
		}
	})
}
