// Package services – TransactionService
//
// TransactionService lists an account's transactions newest first using
// keyset pagination. Cursors are opaque to clients: the URL-safe base64 of
// "<created_at unix nanos>:<transaction id>" of the last item served.
package services

import (
	"context"
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tbourn/go-wallet-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TransactionItem is one row of an account's transaction list.
type TransactionItem struct {
	TransactionID string          `json:"transactionId" example:"tx-001"`
	Name          string          `json:"name" example:"Transaction - 1"`
	Image         string          `json:"image" example:"https://dummyimage.com/54x54/999/fff"`
	IsBank        bool            `json:"isBank" example:"true"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string" example:"-250.50"`
	CreatedAt     time.Time       `json:"createdAt" example:"2025-01-01T09:00:00Z"`
}

// TransactionsPage is a keyset page. NextCursor is empty on the last page.
type TransactionsPage struct {
	Items      []TransactionItem `json:"items"`
	NextCursor string            `json:"nextCursor" example:"MTczNTcyMjAwMDAwMDAwMDAwMDp0eC0wMDE"`
}

// TransactionService serves transaction listings.
type TransactionService struct {
	DB *gorm.DB
}

// NewTransactionService constructs a TransactionService over db.
func NewTransactionService(db *gorm.DB) *TransactionService {
	return &TransactionService{DB: db}
}

// List returns up to limit transactions of accountID after cursor. The
// account must belong to userID. An empty cursor starts at the newest.
func (s *TransactionService) List(ctx context.Context, userID, accountID, cursor string, limit int) (*TransactionsPage, error) {
	ctx, span := otel.Tracer("services/TransactionService").Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("account.id", accountID),
			attribute.Int("limit", limit),
			attribute.Bool("cursor.present", cursor != ""),
		),
	)
	defer span.End()

	after, err := DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	if _, err := repo.GetAccount(ctx, s.DB, userID, accountID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, errors.Wrap(err, "get account")
	}

	// One extra row tells whether another page exists.
	rows, err := repo.ListTransactionsAfter(ctx, s.DB, accountID, after, limit+1)
	if err != nil {
		return nil, errors.Wrap(err, "list transactions")
	}

	page := &TransactionsPage{Items: make([]TransactionItem, 0, limit)}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		page.NextCursor = EncodeCursor(repo.TxKey{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	for _, t := range rows {
		page.Items = append(page.Items, TransactionItem{
			TransactionID: t.ID,
			Name:          t.Name,
			Image:         t.Image,
			IsBank:        t.IsBank,
			Amount:        t.Amount,
			CreatedAt:     t.CreatedAt.UTC(),
		})
	}
	return page, nil
}

// EncodeCursor renders a keyset position as an opaque cursor.
func EncodeCursor(k repo.TxKey) string {
	raw := strconv.FormatInt(k.CreatedAt.UTC().UnixNano(), 10) + ":" + k.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a cursor produced by EncodeCursor. An empty cursor
// yields nil; anything malformed yields ErrInvalidCursor.
func DecodeCursor(cursor string) (*repo.TxKey, error) {
	if cursor == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	ts, id, ok := strings.Cut(string(raw), ":")
	if !ok || id == "" {
		return nil, ErrInvalidCursor
	}
	nanos, err := strconv.ParseInt(ts, 10, 64)
	if err != nil || nanos < 0 {
		return nil, ErrInvalidCursor
	}
	return &repo.TxKey{CreatedAt: time.Unix(0, nanos).UTC(), ID: id}, nil
}
