package token

import (
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/eliyaaki/auth-service/internal/apperrors"
	"github.com/eliyaaki/auth-service/internal/models"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 365 * 24 * time.Hour

	signingMethod = "RS256"
)

// AccessClaims carry the public user projection only:
// no password hash, no verification or reset codes
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID   uuid.UUID `json:"uid"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Verified bool      `json:"verified"`
}

// RefreshClaims carry nothing but the session id.
// Everything else about the grant lives server side on the session row
type RefreshClaims struct {
	jwt.RegisteredClaims
	SessionID uuid.UUID `json:"session"`
}

// Codec configuration
// The four keys are base64 encoded PEM blocks, the way they are
// delivered through the environment
type Config struct {
	AccessPrivateKey  string
	AccessPublicKey   string
	RefreshPrivateKey string
	RefreshPublicKey  string

	// Token lifetimes. Defaults are used when zero
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Codec signs and verifies access and refresh tokens with RS256.
// Pure functions over key material, no storage involved
type Codec struct {
	accessPrivate  string
	accessPublic   string
	refreshPrivate string
	refreshPublic  string

	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(cfg Config) (*Codec, error) {
	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	c := &Codec{
		accessPrivate:  cfg.AccessPrivateKey,
		accessPublic:   cfg.AccessPublicKey,
		refreshPrivate: cfg.RefreshPrivateKey,
		refreshPublic:  cfg.RefreshPublicKey,

		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}

	// Broken key material is a configuration fault, catch it at boot
	// instead of on the first request
	for name, check := range map[string]func() error{
		"access private":  func() error { _, err := decodePrivateKey(c.accessPrivate); return err },
		"access public":   func() error { _, err := decodePublicKey(c.accessPublic); return err },
		"refresh private": func() error { _, err := decodePrivateKey(c.refreshPrivate); return err },
		"refresh public":  func() error { _, err := decodePublicKey(c.refreshPublic); return err },
	} {
		if err := check(); err != nil {
			return nil, fmt.Errorf("bad %s key: %w", name, err)
		}
	}

	return c, nil
}

// Sign access token with the public user projection as claims
func (c *Codec) SignAccess(user models.User) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(c.accessTTL)

	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:   user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Verified: user.Verified,
	}

	value, err := c.sign(claims, c.accessPrivate)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing access token. Err: %w", err)
	}

	return models.IssuedToken{Value: value, ExpiresAt: expiresAt}, nil
}

// Sign refresh token whose sole claim is the session id
func (c *Codec) SignRefresh(sessionID uuid.UUID) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(c.refreshTTL)

	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		SessionID: sessionID,
	}

	value, err := c.sign(claims, c.refreshPrivate)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing refresh token. Err: %w", err)
	}

	return models.IssuedToken{Value: value, ExpiresAt: expiresAt}, nil
}

// Parse and validate access token
// Any failure (bad signature, expired, malformed) comes back as
// apperrors.ErrTokenInvalid: the caller could not authenticate, that's all
func (c *Codec) VerifyAccess(tokenString string) (AccessClaims, error) {
	claims := &AccessClaims{}
	err := c.verify(tokenString, claims, c.accessPublic)
	if err != nil {
		return AccessClaims{}, err
	}

	return *claims, nil
}

// Parse and validate refresh token
func (c *Codec) VerifyRefresh(tokenString string) (RefreshClaims, error) {
	claims := &RefreshClaims{}
	err := c.verify(tokenString, claims, c.refreshPublic)
	if err != nil {
		return RefreshClaims{}, err
	}

	return *claims, nil
}

func (c *Codec) sign(claims jwt.Claims, keyB64 string) (string, error) {
	key, err := decodePrivateKey(keyB64)
	if err != nil {
		return "", err
	}

	return jwt.NewWithClaims(jwt.GetSigningMethod(signingMethod), claims).SignedString(key)
}

func (c *Codec) verify(tokenString string, claims jwt.Claims, keyB64 string) error {
	key, err := decodePublicKey(keyB64)
	if err != nil {
		return fmt.Errorf("bad public key: %w", err)
	}

	_, err = jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{signingMethod}),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrTokenInvalid, err)
	}

	return nil
}

func decodePrivateKey(keyB64 string) (*rsa.PrivateKey, error) {
	pemBytes, err := decodeBase64(keyB64)
	if err != nil {
		return nil, err
	}

	return jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
}

func decodePublicKey(keyB64 string) (*rsa.PublicKey, error) {
	pemBytes, err := decodeBase64(keyB64)
	if err != nil {
		return nil, err
	}

	return jwt.ParseRSAPublicKeyFromPEM(pemBytes)
}

func decodeBase64(keyB64 string) ([]byte, error) {
	if keyB64 == "" {
		return nil, errors.New("key is not configured")
	}

	pemBytes, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return nil, fmt.Errorf("key is not valid base64: %w", err)
	}

	return pemBytes, nil
}
