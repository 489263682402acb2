package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-wallet-backend/internal/domain"
)

// SeedDemo inserts a small wallet for userID: one main saving account, a goal,
// a loan and a credit card, plus a handful of payee transactions. Rows that
// already exist are left untouched, so the call is safe on every boot.
func SeedDemo(ctx context.Context, db *gorm.DB, userID string, now time.Time) error {
	now = now.UTC().Truncate(time.Second)
	id := func(s string) string { return userID + "-" + s }
	progress := 60

	accounts := []domain.Account{
		{AccountID: id("saving"), UserID: userID, Type: domain.AccountTypeSaving, Currency: "THB", AccountNumber: "568-2-81740-9", Issuer: "TestLab", CreatedAt: now},
		{AccountID: id("goal"), UserID: userID, Type: domain.AccountTypeGoal, Currency: "THB", AccountNumber: "568-2-81740-1", Issuer: "TestLab", CreatedAt: now.Add(time.Second)},
		{AccountID: id("loan"), UserID: userID, Type: domain.AccountTypeLoan, Currency: "THB", AccountNumber: "568-2-81740-2", Issuer: "TestLab", CreatedAt: now.Add(2 * time.Second)},
		{AccountID: id("credit"), UserID: userID, Type: domain.AccountTypeCredit, Currency: "USD", AccountNumber: "4111-XXXX-1111", Issuer: "TestLab", CreatedAt: now.Add(3 * time.Second)},
	}
	balances := []domain.AccountBalance{
		{AccountID: id("saving"), UserID: userID, Amount: decimal.RequireFromString("62000"), UpdatedAt: now},
		{AccountID: id("goal"), UserID: userID, Amount: decimal.RequireFromString("15000.50"), UpdatedAt: now},
		{AccountID: id("loan"), UserID: userID, Amount: decimal.RequireFromString("-120000"), UpdatedAt: now},
		{AccountID: id("credit"), UserID: userID, Amount: decimal.RequireFromString("-320.75"), UpdatedAt: now},
	}
	details := []domain.AccountDetail{
		{AccountID: id("saving"), UserID: userID, Color: "#24c875", IsMainAccount: true, UpdatedAt: now},
		{AccountID: id("goal"), UserID: userID, Color: "#ffb800", Progress: &progress, UpdatedAt: now},
		{AccountID: id("loan"), UserID: userID, Color: "#e5474b", UpdatedAt: now},
	}

	payees := []string{"Billy", "Emily", "billy", "Grocer", "Emily"}
	txs := make([]domain.Transaction, 0, len(payees))
	for i, name := range payees {
		txs = append(txs, domain.Transaction{
			ID:        id(fmt.Sprintf("tx%d", i+1)),
			UserID:    userID,
			AccountID: id("saving"),
			Name:      name,
			Image:     "https://dummyimage.com/54x54/999/fff",
			Amount:    decimal.NewFromInt(int64(-100 * (i + 1))),
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		})
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		skip := tx.Clauses(clause.OnConflict{DoNothing: true})
		for _, rows := range []any{&accounts, &balances, &details, &txs} {
			if err := skip.Create(rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return errors.Wrap(err, "seed demo wallet")
}
