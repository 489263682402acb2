package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tbourn/go-wallet-backend/internal/domain"
	"github.com/tbourn/go-wallet-backend/internal/repo"
)

func seedTransactions(t *testing.T, n int) *TransactionService {
	t.Helper()
	db := newServiceDB(t)
	addAccount(t, db, "u1", "sav", domain.AccountTypeSaving, t0)
	addAccount(t, db, "u2", "x", domain.AccountTypeSaving, t0)
	for i := 0; i < n; i++ {
		addTx(t, db, "u1", "sav", fmt.Sprintf("tx-%02d", i), fmt.Sprintf("Transaction - %d", i), t0.Add(time.Duration(i)*time.Minute))
	}
	return NewTransactionService(db)
}

func TestTransactionList_WalksAllPages(t *testing.T) {
	s := seedTransactions(t, 5)
	ctx := context.Background()

	var (
		seen   []string
		cursor string
		pages  int
	)
	for {
		page, err := s.List(ctx, "u1", "sav", cursor, 2)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		pages++
		for _, it := range page.Items {
			seen = append(seen, it.TransactionID)
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	if pages != 3 {
		t.Fatalf("expected 3 pages, got %d", pages)
	}
	want := []string{"tx-04", "tx-03", "tx-02", "tx-01", "tx-00"}
	if fmt.Sprint(seen) != fmt.Sprint(want) {
		t.Fatalf("walked %v; want %v", seen, want)
	}
}

func TestTransactionList_ExactFitHasNoNextCursor(t *testing.T) {
	s := seedTransactions(t, 2)
	page, err := s.List(context.Background(), "u1", "sav", "", 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Items) != 2 || page.NextCursor != "" {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestTransactionList_EmptyAccount(t *testing.T) {
	s := seedTransactions(t, 0)
	page, err := s.List(context.Background(), "u1", "sav", "", 20)
	if err != nil || page.Items == nil || len(page.Items) != 0 || page.NextCursor != "" {
		t.Fatalf("expected empty page, got %+v, %v", page, err)
	}
}

func TestTransactionList_AccountOwnership(t *testing.T) {
	s := seedTransactions(t, 1)
	for _, acc := range []string{"x", "missing"} {
		if _, err := s.List(context.Background(), "u1", acc, "", 20); !errors.Is(err, ErrAccountNotFound) {
			t.Fatalf("List(%s) err = %v; want ErrAccountNotFound", acc, err)
		}
	}
}

func TestTransactionList_InvalidCursor(t *testing.T) {
	s := seedTransactions(t, 1)
	bad := []string{
		"%%%",
		base64.RawURLEncoding.EncodeToString([]byte("no-colon")),
		base64.RawURLEncoding.EncodeToString([]byte("abc:tx-1")),
		base64.RawURLEncoding.EncodeToString([]byte("123:")),
	}
	for _, c := range bad {
		if _, err := s.List(context.Background(), "u1", "sav", c, 20); !errors.Is(err, ErrInvalidCursor) {
			t.Fatalf("List(cursor=%q) err = %v; want ErrInvalidCursor", c, err)
		}
	}
}

func TestCursorRoundTrip(t *testing.T) {
	k := repo.TxKey{CreatedAt: time.Date(2025, 5, 6, 7, 8, 9, 123456789, time.UTC), ID: "tx:with:colons"}
	got, err := DecodeCursor(EncodeCursor(k))
	if err != nil {
		t.Fatalf("DecodeCursor: %v", err)
	}
	if !got.CreatedAt.Equal(k.CreatedAt) || got.ID != k.ID {
		t.Fatalf("round trip = %+v; want %+v", got, k)
	}
	if k, err := DecodeCursor(""); k != nil || err != nil {
		t.Fatalf("empty cursor = %v, %v; want nil, nil", k, err)
	}
}
