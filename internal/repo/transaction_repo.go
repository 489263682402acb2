// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for transactions.
//
// Transactions are read newest first, ordered by (created_at DESC, id DESC).
// Paging uses a keyset: the caller passes the last row it has seen and gets
// the rows strictly after it, so pages stay stable while new rows arrive.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-wallet-backend/internal/domain"
)

// TxKey is the keyset position of a transaction in newest-first order.
type TxKey struct {
	CreatedAt time.Time
	ID        string
}

// ListTransactionsAfter returns up to limit transactions of accountID that
// come after the key in newest-first order. A nil after starts at the newest.
func ListTransactionsAfter(ctx context.Context, db *gorm.DB, accountID string, after *TxKey, limit int) ([]domain.Transaction, error) {
	q := db.WithContext(ctx).Where("account_id = ?", accountID)
	if after != nil {
		ts := after.CreatedAt.UTC()
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", ts, ts, after.ID)
	}
	var out []domain.Transaction
	err := q.Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListUserTransactions returns every transaction of userID, newest first.
func ListUserTransactions(ctx context.Context, db *gorm.DB, userID string) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error
	return out, err
}

// GetUserTransaction fetches a transaction owned by userID, or ErrNotFound.
func GetUserTransaction(ctx context.Context, db *gorm.DB, userID, id string) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}
