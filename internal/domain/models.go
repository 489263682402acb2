// Package domain defines the persistence models for accounts, balances,
// transactions, and sessions. These types are mapped with GORM and shared by
// the repository and service layers.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account types.
const (
	AccountTypeSaving  = "SAVING_ACCOUNT"
	AccountTypeGoal    = "GOAL"
	AccountTypeLoan    = "LOAN"
	AccountTypeCredit  = "CREDIT_CARD"
	AccountTypeDeposit = "DEPOSIT"
)

// Goal statuses derived from AccountDetail.Progress.
const (
	GoalCompleted  = "COMPLETED"
	GoalInProgress = "IN_PROGRESS"
	GoalNotStarted = "NOT_STARTED"
	GoalUnknown    = "UNKNOWN"
)

// FlagFavorite marks a payee as a favorite.
const FlagFavorite = "FAVORITE"

// Account is a product held by a user.
//
// Fields:
//   - AccountID: stable identifier (primary key).
//   - UserID: owner; indexed together with CreatedAt for paging.
//   - Type: one of the AccountType* constants.
//   - Currency: ISO 4217 code.
//   - AccountNumber: masked display number.
//   - Issuer: issuing bank or product line.
type Account struct {
	AccountID     string    `json:"accountId"     gorm:"type:varchar(50);primaryKey"`
	UserID        string    `json:"-"             gorm:"type:varchar(50);not null;index:idx_user_accounts,priority:1"`
	Type          string    `json:"type"          gorm:"type:varchar(50);not null;index"`
	Currency      string    `json:"currency"      gorm:"type:varchar(3);not null;default:'THB'"`
	AccountNumber string    `json:"accountNumber" gorm:"type:varchar(20)"`
	Issuer        string    `json:"issuer"        gorm:"type:varchar(100)"`
	CreatedAt     time.Time `json:"-"             gorm:"index:idx_user_accounts,priority:2"`
	UpdatedAt     time.Time `json:"-"`
}

// TableName returns the database table name for Account.
func (Account) TableName() string { return "accounts" }

// AccountBalance holds the current balance of one account.
type AccountBalance struct {
	AccountID string          `gorm:"type:varchar(50);primaryKey"`
	UserID    string          `gorm:"type:varchar(50);not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	UpdatedAt time.Time

	Account Account `gorm:"foreignKey:AccountID;references:AccountID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for AccountBalance.
func (AccountBalance) TableName() string { return "account_balances" }

// AccountDetail carries presentation data for an account. Progress is only
// meaningful for goal accounts and may be absent.
type AccountDetail struct {
	AccountID     string `gorm:"type:varchar(50);primaryKey"`
	UserID        string `gorm:"type:varchar(50);not null;index"`
	Color         string `gorm:"type:varchar(10)"`
	IsMainAccount bool   `gorm:"not null;default:false"`
	Progress      *int
	UpdatedAt     time.Time

	Account Account `gorm:"foreignKey:AccountID;references:AccountID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for AccountDetail.
func (AccountDetail) TableName() string { return "account_details" }

// GoalStatus maps a goal progress percentage onto its status. A nil progress
// (no detail row, or no progress recorded) is UNKNOWN.
func GoalStatus(progress *int) string {
	switch {
	case progress == nil:
		return GoalUnknown
	case *progress >= 100:
		return GoalCompleted
	case *progress > 0:
		return GoalInProgress
	default:
		return GoalNotStarted
	}
}

// AccountFlag is a user-scoped marker on a target (an account or payee).
// A user has at most one flag of each type per target.
type AccountFlag struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	UserID    string    `gorm:"type:varchar(50);not null;uniqueIndex:ux_flag_user_target_type,priority:1"`
	TargetID  string    `gorm:"type:varchar(50);not null;uniqueIndex:ux_flag_user_target_type,priority:2"`
	FlagType  string    `gorm:"type:varchar(50);not null;uniqueIndex:ux_flag_user_target_type,priority:3"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName returns the database table name for AccountFlag.
func (AccountFlag) TableName() string { return "account_flags" }

// Transaction is a posted movement on an account. Payees are derived from
// the counterparty (Name, Image) of a user's transactions.
//
// The (account_id, created_at, id) index backs keyset pagination.
type Transaction struct {
	ID        string          `gorm:"type:varchar(50);primaryKey"`
	UserID    string          `gorm:"type:varchar(50);not null;index"`
	AccountID string          `gorm:"type:varchar(50);not null;index:idx_account_tx,priority:1"`
	Name      string          `gorm:"type:varchar(100);not null"`
	Image     string          `gorm:"type:varchar(255)"`
	IsBank    bool            `gorm:"not null;default:false"`
	Amount    decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	CreatedAt time.Time       `gorm:"not null;index:idx_account_tx,priority:2"`

	Account Account `gorm:"foreignKey:AccountID;references:AccountID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Transaction.
func (Transaction) TableName() string { return "transactions" }

// Session binds a bearer token to a user. Only the SHA-256 of the token is
// stored.
type Session struct {
	TokenHash string    `gorm:"type:char(64);primaryKey"`
	UserID    string    `gorm:"type:varchar(50);not null;index"`
	CreatedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// TableName returns the database table name for Session.
func (Session) TableName() string { return "sessions" }
