package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/eliyaaki/auth-service/internal/apperrors"
	"github.com/eliyaaki/auth-service/internal/mailer"
	"github.com/eliyaaki/auth-service/internal/models"
	"github.com/eliyaaki/auth-service/internal/repository"
	"github.com/eliyaaki/auth-service/internal/service/auth"
)

// MailDispatcher accepts outbound mail and delivers it in the background
type MailDispatcher interface {
	Enqueue(msg mailer.Message)
}

type Config struct {
	// Public base URL used in verification and reset links
	BaseURL string

	// Hasher for new passwords. BcryptHasher when nil
	Hasher auth.PasswordHasher
}

// User service drives the account lifecycle: registration, email
// verification and the one-time password reset codes
type UserService struct {
	hasher  auth.PasswordHasher
	storage repository.Storage
	mail    MailDispatcher
	baseURL string
}

func NewService(cfg Config, storage repository.Storage, mail MailDispatcher) (*UserService, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = auth.DefaultHasher
	}

	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}
	if mail == nil {
		return nil, errors.New("mail dispatcher must not be nil")
	}

	return &UserService{
		hasher:  hasher,
		storage: storage,
		mail:    mail,
		baseURL: cfg.BaseURL,
	}, nil
}

// Register creates an unverified user and emails the verification link
func (s *UserService) Register(ctx context.Context, name string, email string, password string) (models.User, error) {
	var user models.User

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password. Err: %w", err)
	}

	code, err := gonanoid.New()
	if err != nil {
		return user, fmt.Errorf("error while generating verification code. Err: %w", err)
	}

	user, err = s.storage.User().CreateUser(ctx, repository.CreateUserParams{
		Name:             name,
		Email:            email,
		HashedPassword:   hash,
		VerificationCode: code,
	})
	if err != nil {
		return user, err
	}

	s.mail.Enqueue(verificationEmail(user, s.verifyURL(user)))

	return user, nil
}

// Verify consumes the verification code issued at registration.
// The verified transition happens exactly once.
// The code check and the flip run in one transaction, so the state the
// code was checked against is the state that gets flipped
func (s *UserService) Verify(ctx context.Context, id uuid.UUID, code string) error {
	return s.storage.InTx(ctx, func(st repository.Storage) error {
		user, err := st.User().GetUserByID(ctx, id)
		if err != nil {
			return err
		}

		if user.Verified {
			return apperrors.ErrAlreadyVerified
		}

		if user.VerificationCode != code {
			return apperrors.ErrVerificationFailed
		}

		_, err = st.User().MarkVerified(ctx, id)
		return err
	})
}

// RequestPasswordReset issues a fresh one-time reset code and emails it.
// A newer request supersedes any pending code. The code is stored
// first, the mail goes out only after storage confirmed
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.storage.User().GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	if !user.Verified {
		return apperrors.ErrUserNotVerified
	}

	code, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("error while generating reset code. Err: %w", err)
	}

	if err := s.storage.User().SetPasswordResetCode(ctx, user.ID, code); err != nil {
		return fmt.Errorf("error while storing reset code. Err: %w", err)
	}

	s.mail.Enqueue(resetEmail(user, s.resetURL(user.ID, code)))

	return nil
}

// ResetPassword changes the password if the one-time code matches.
// The code check, the password change and clearing the code are one
// atomic update, a used code can not work twice.
// Every invalid case comes back as the same generic error
func (s *UserService) ResetPassword(ctx context.Context, id uuid.UUID, code string, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("can't use this as password. Err: %w", err)
	}

	err = s.storage.User().ResetPassword(ctx, id, code, hash)
	switch {
	case errors.Is(err, apperrors.ErrResetFailed):
		return apperrors.ErrResetFailed
	case err != nil:
		return fmt.Errorf("error while resetting password. Err: %w", err)
	}

	return nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.storage.User().GetUserByEmail(ctx, email)
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.storage.User().ListUsers(ctx)
}

func (s *UserService) verifyURL(user models.User) string {
	return fmt.Sprintf("%s/api/users/verify/%s/%s", s.baseURL, user.ID, user.VerificationCode)
}

func (s *UserService) resetURL(id uuid.UUID, code string) string {
	return fmt.Sprintf("%s/api/users/resetpassword/%s/%s", s.baseURL, id, code)
}
