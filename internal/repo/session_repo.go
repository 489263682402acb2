// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file stores bearer-token sessions. Tokens are never
// persisted in clear; rows are keyed by the hex SHA-256 of the token.
package repo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-wallet-backend/internal/domain"
)

// HashToken returns the storage key for a bearer token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// CreateSession stores a session for userID valid for ttl.
func CreateSession(ctx context.Context, db *gorm.DB, userID, token string, ttl time.Duration) (*domain.Session, error) {
	now := time.Now().UTC()
	s := &domain.Session{
		TokenHash: HashToken(token),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// FindSession returns the user id owning token if the session has not
// expired at now, or ErrNotFound.
func FindSession(ctx context.Context, db *gorm.DB, token string, now time.Time) (string, error) {
	var s domain.Session
	if err := db.WithContext(ctx).
		Where("token_hash = ? AND expires_at > ?", HashToken(token), now.UTC()).
		First(&s).Error; err != nil {
		return "", err
	}
	return s.UserID, nil
}
