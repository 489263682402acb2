// Package services – AuthService
//
// AuthService resolves opaque bearer tokens to user ids through the session
// table, and issues tokens for seeding and tests.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/tbourn/go-wallet-backend/internal/repo"
)

// AuthService validates and issues session tokens.
type AuthService struct {
	DB *gorm.DB
	// TTL is the lifetime of issued tokens.
	TTL time.Duration
	// Now is the clock used for expiry checks. Nil means time.Now.
	Now func() time.Time
}

// NewAuthService constructs an AuthService with a 24h token lifetime.
func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{DB: db, TTL: 24 * time.Hour}
}

// ResolveToken returns the user id owning token, or ErrInvalidToken when the
// token is unknown or expired.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}
	userID, err := repo.FindSession(ctx, s.DB, token, s.now())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", errors.Wrap(err, "find session")
	}
	return userID, nil
}

// Issue creates a fresh random token for userID.
func (s *AuthService) Issue(ctx context.Context, userID string) (string, error) {
	token := strings.ReplaceAll(uuid.NewString(), "-", "") + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := repo.CreateSession(ctx, s.DB, userID, token, s.TTL); err != nil {
		return "", errors.Wrap(err, "create session")
	}
	return token, nil
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
