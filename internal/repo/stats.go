// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (weak ETags) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-wallet-backend/internal/domain"
)

// AccountsStats returns the number of accounts userID holds and the latest
// UpdatedAt across the account, balance and detail rows. Any change that
// alters an account summary therefore changes the result. maxUpdatedAt is
// nil when the user has no accounts.
func AccountsStats(ctx context.Context, db *gorm.DB, userID string) (count int64, maxUpdatedAt *time.Time, err error) {
	if err = db.WithContext(ctx).Model(&domain.Account{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	var latest time.Time
	for _, model := range []any{&domain.Account{}, &domain.AccountBalance{}, &domain.AccountDetail{}} {
		ts, found, err := latestUpdatedAt(ctx, db, model, userID)
		if err != nil {
			return 0, nil, err
		}
		if found && ts.After(latest) {
			latest = ts
		}
	}
	return count, &latest, nil
}

// latestUpdatedAt reads the newest updated_at of model rows owned by userID.
// Ordering and limiting avoids MAX(), which SQLite returns as TEXT.
func latestUpdatedAt(ctx context.Context, db *gorm.DB, model any, userID string) (time.Time, bool, error) {
	var rows []struct {
		UpdatedAt time.Time
	}
	err := db.WithContext(ctx).Model(model).
		Where("user_id = ?", userID).
		Select("updated_at").
		Order("updated_at DESC").
		Limit(1).
		Scan(&rows).Error
	if err != nil || len(rows) == 0 {
		return time.Time{}, false, err
	}
	return rows[0].UpdatedAt, true, nil
}
