// Package services – IdempotencyService
//
// IdempotencyService stores the outcome of mutating requests keyed by
// (user, scope, key) so a retried request replays the first response.
package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/tbourn/go-wallet-backend/internal/domain"
	"github.com/tbourn/go-wallet-backend/internal/repo"
)

// IdempotencyService wraps the idempotency repository with a fixed TTL.
type IdempotencyService struct {
	DB  *gorm.DB
	TTL time.Duration
}

// NewIdempotencyService constructs an IdempotencyService. A non-positive ttl
// defaults to 24h.
func NewIdempotencyService(db *gorm.DB, ttl time.Duration) *IdempotencyService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyService{DB: db, TTL: ttl}
}

// Exists reports whether a still-valid record exists at now.
func (s *IdempotencyService) Exists(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
	_, err := repo.GetIdempotency(ctx, s.DB, userID, scope, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "get idempotency")
	}
	return true, nil
}

// Get returns the stored record, or (nil, nil) when there is none.
func (s *IdempotencyService) Get(ctx context.Context, userID, scope, key string) (*domain.Idempotency, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, userID, scope, key, time.Now().UTC())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get idempotency")
	}
	return rec, nil
}

// Save records a completed response. A concurrent first writer wins; the
// duplicate is not an error.
func (s *IdempotencyService) Save(ctx context.Context, userID, scope, key string, status int, body string) error {
	_, err := repo.CreateIdempotency(ctx, s.DB, userID, scope, key, status, body, s.TTL)
	if err != nil && !errors.Is(err, repo.ErrDuplicate) {
		return errors.Wrap(err, "save idempotency")
	}
	return nil
}
