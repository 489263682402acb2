// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for accounts and
// their balance and detail rows.
//
// All functions are context-aware and accept a *gorm.DB handle, so they can
// run inside transactions. They follow the "thin repository" approach: no
// business logic, only query composition.
//
// Error semantics:
//   - A missing account yields ErrNotFound (gorm.ErrRecordNotFound).
//   - Other DB errors are propagated as-is.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-wallet-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// accountsQuery scopes the accounts table to userID and, when types is not
// empty, to those account types.
func accountsQuery(ctx context.Context, db *gorm.DB, userID string, types []string) *gorm.DB {
	q := db.WithContext(ctx).Model(&domain.Account{}).Where("user_id = ?", userID)
	if len(types) > 0 {
		q = q.Where("type IN ?", types)
	}
	return q
}

// CountAccounts returns how many accounts userID holds, optionally limited
// to the given types.
func CountAccounts(ctx context.Context, db *gorm.DB, userID string, types ...string) (int64, error) {
	var n int64
	err := accountsQuery(ctx, db, userID, types).Count(&n).Error
	return n, err
}

// ListAccountsPage returns a page of userID's accounts, oldest first with the
// account id as tie-breaker, optionally limited to the given types.
func ListAccountsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int, types ...string) ([]domain.Account, error) {
	var out []domain.Account
	err := accountsQuery(ctx, db, userID, types).
		Order("created_at ASC").
		Order("account_id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetAccount fetches a single account owned by userID, or ErrNotFound.
func GetAccount(ctx context.Context, db *gorm.DB, userID, accountID string) (*domain.Account, error) {
	var a domain.Account
	if err := db.WithContext(ctx).
		Where("account_id = ? AND user_id = ?", accountID, userID).
		First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// ListBalances returns userID's balance rows. When accountIDs is not empty
// only those accounts are returned.
func ListBalances(ctx context.Context, db *gorm.DB, userID string, accountIDs ...string) ([]domain.AccountBalance, error) {
	q := db.WithContext(ctx).Where("user_id = ?", userID)
	if len(accountIDs) > 0 {
		q = q.Where("account_id IN ?", accountIDs)
	}
	var out []domain.AccountBalance
	err := q.Order("account_id ASC").Find(&out).Error
	return out, err
}

// ListDetails returns userID's detail rows. When accountIDs is not empty only
// those accounts are returned.
func ListDetails(ctx context.Context, db *gorm.DB, userID string, accountIDs ...string) ([]domain.AccountDetail, error) {
	q := db.WithContext(ctx).Where("user_id = ?", userID)
	if len(accountIDs) > 0 {
		q = q.Where("account_id IN ?", accountIDs)
	}
	var out []domain.AccountDetail
	err := q.Find(&out).Error
	return out, err
}
