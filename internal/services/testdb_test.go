package services

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-wallet-backend/internal/domain"
)

var t0 = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := db.AutoMigrate(
		&domain.Account{}, &domain.AccountBalance{}, &domain.AccountDetail{},
		&domain.AccountFlag{}, &domain.Transaction{}, &domain.Session{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func mustCreate(t *testing.T, db *gorm.DB, v any) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("seed %T: %v", v, err)
	}
}

func addAccount(t *testing.T, db *gorm.DB, userID, id, typ string, at time.Time) {
	t.Helper()
	mustCreate(t, db, &domain.Account{
		AccountID: id, UserID: userID, Type: typ, Currency: "THB",
		AccountNumber: "568-2-" + id, Issuer: "TestLab", CreatedAt: at, UpdatedAt: at,
	})
}

func addBalance(t *testing.T, db *gorm.DB, userID, id, amount string) {
	t.Helper()
	mustCreate(t, db, &domain.AccountBalance{AccountID: id, UserID: userID, Amount: decimal.RequireFromString(amount), UpdatedAt: t0})
}

func addDetail(t *testing.T, db *gorm.DB, userID, id, color string, progress *int) {
	t.Helper()
	mustCreate(t, db, &domain.AccountDetail{AccountID: id, UserID: userID, Color: color, Progress: progress, UpdatedAt: t0})
}

func addTx(t *testing.T, db *gorm.DB, userID, accountID, id, name string, at time.Time) {
	t.Helper()
	mustCreate(t, db, &domain.Transaction{
		ID: id, UserID: userID, AccountID: accountID, Name: name,
		Image: "https://img/" + id, Amount: decimal.NewFromInt(-100), CreatedAt: at,
	})
}

func intp(v int) *int { return &v }
