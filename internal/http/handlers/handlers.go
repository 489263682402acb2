// Package handlers provides HTTP handler implementations for the public API.
//
// Handlers are transport-thin: they read path, query and body input through
// the adapters in errors.go, call application services, and translate
// results into HTTP responses (including conditional responses). Every
// failure is handed to the error emitter via fail.
package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tbourn/go-wallet-backend/internal/apierr"
	"github.com/tbourn/go-wallet-backend/internal/domain"
	"github.com/tbourn/go-wallet-backend/internal/http/middleware"
	"github.com/tbourn/go-wallet-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// AccountService defines the account and payee reads consumed by handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AccountService interface {
	ListAccounts(ctx context.Context, userID string, page, limit int) (services.Page[services.AccountSummary], error)
	ListGoals(ctx context.Context, userID string, page, limit int) (services.Page[services.GoalItem], error)
	ListLoans(ctx context.Context, userID string, page, limit int) (services.Page[services.LoanItem], error)
	ListPayees(ctx context.Context, userID string, page, limit int) (services.Page[services.PayeeItem], error)
	SearchPayees(ctx context.Context, userID, q string, page, limit int) (services.Page[services.PayeeItem], error)
	SetFavorite(ctx context.Context, userID, payeeID string, favorite bool) (*services.PayeeItem, error)
	Balances(ctx context.Context, userID string) (map[string]decimal.Decimal, error)
	// AccountsVersion feeds the weak ETag of the accounts listing.
	AccountsVersion(ctx context.Context, userID string) (int64, *time.Time, error)
}

// TransactionService defines keyset transaction listing.
type TransactionService interface {
	List(ctx context.Context, userID, accountID, cursor string, limit int) (*services.TransactionsPage, error)
}

// IdempotencyStore persists responses of mutating requests for replay.
type IdempotencyStore interface {
	Get(ctx context.Context, userID, scope, key string) (*domain.Idempotency, error)
	Save(ctx context.Context, userID, scope, key string, status int, body string) error
}

// Limits bounds the page sizes accepted by listing endpoints.
type Limits struct {
	DefaultLimit      int
	MaxLimit          int
	PayeeDefaultLimit int
	PayeeMaxLimit     int
}

// DefaultLimits are the listing bounds used when none are configured.
var DefaultLimits = Limits{DefaultLimit: 20, MaxLimit: 100, PayeeDefaultLimit: 10, PayeeMaxLimit: 20}

//
// Handler wiring
//

// Handlers groups the wallet HTTP endpoints.
type Handlers struct {
	accSvc AccountService
	txSvc  TransactionService
	idem   IdempotencyStore
	limits Limits
}

// New constructs Handlers bound to the given services. idem may be nil, in
// which case Idempotency-Key is validated but responses are not replayed.
// Zero fields of limits fall back to DefaultLimits.
func New(accSvc AccountService, txSvc TransactionService, idem IdempotencyStore, limits Limits) *Handlers {
	if limits.DefaultLimit <= 0 {
		limits.DefaultLimit = DefaultLimits.DefaultLimit
	}
	if limits.MaxLimit <= 0 {
		limits.MaxLimit = DefaultLimits.MaxLimit
	}
	if limits.PayeeDefaultLimit <= 0 {
		limits.PayeeDefaultLimit = DefaultLimits.PayeeDefaultLimit
	}
	if limits.PayeeMaxLimit <= 0 {
		limits.PayeeMaxLimit = DefaultLimits.PayeeMaxLimit
	}
	return &Handlers{accSvc: accSvc, txSvc: txSvc, idem: idem, limits: limits}
}

// currentUser returns the id stored by middleware.BearerAuth. Routes are
// mounted behind it, so a miss means the header never made it through.
func currentUser(c *gin.Context) (string, bool) {
	uid, ok := middleware.UserID(c)
	if !ok {
		fail(c, &apierr.MissingHeaderError{Name: middleware.HeaderAuthorization})
		return "", false
	}
	return uid, true
}
