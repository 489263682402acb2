// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for AccountFlag,
// the per-user markers such as FAVORITE.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-wallet-backend/internal/domain"
)

// ListFlaggedTargets returns the ids userID has flagged with flagType.
func ListFlaggedTargets(ctx context.Context, db *gorm.DB, userID, flagType string) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.AccountFlag{}).
		Where("user_id = ? AND flag_type = ?", userID, flagType).
		Order("target_id ASC").
		Pluck("target_id", &ids).Error
	return ids, err
}

// SetFlag marks targetID with flagType for userID. Setting an existing flag
// is a no-op.
func SetFlag(ctx context.Context, db *gorm.DB, userID, targetID, flagType string) error {
	now := time.Now().UTC()
	f := &domain.AccountFlag{
		UserID:    userID,
		TargetID:  targetID,
		FlagType:  flagType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "target_id"}, {Name: "flag_type"}},
			DoNothing: true,
		}).
		Create(f).Error
}

// ClearFlags removes flagType from every id in targetIDs for userID.
// Clearing an absent flag is a no-op.
func ClearFlags(ctx context.Context, db *gorm.DB, userID, flagType string, targetIDs ...string) error {
	if len(targetIDs) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Where("user_id = ? AND flag_type = ? AND target_id IN ?", userID, flagType, targetIDs).
		Delete(&domain.AccountFlag{}).Error
}
