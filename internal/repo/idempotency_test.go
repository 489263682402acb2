package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-wallet-backend/internal/domain"
)

const favScope = "PUT /v1/payees/t1/favorite"

func TestGetIdempotency_BlankScopeOrKey_ReturnsNotFound(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	now := time.Now().UTC()

	if rec, err := GetIdempotency(context.Background(), db, "u1", "   ", "k1", now); rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for blank scope, got (%v, %v)", rec, err)
	}
	if rec, err := GetIdempotency(context.Background(), db, "u1", favScope, "", now); rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for blank key, got (%v, %v)", rec, err)
	}
}

func TestGetIdempotency_ExpiredOrMissing_ReturnsNotFound(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	now := time.Now().UTC()

	exp := &domain.Idempotency{
		ID:        "expired",
		UserID:    "u1",
		Scope:     favScope,
		Key:       "k1",
		Status:    200,
		CreatedAt: now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	}
	if err := db.Create(exp).Error; err != nil {
		t.Fatalf("seed expired: %v", err)
	}

	if rec, err := GetIdempotency(context.Background(), db, "u1", favScope, "k1", now); rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for expired, got (%v, %v)", rec, err)
	}
	if rec, err := GetIdempotency(context.Background(), db, "u1", favScope, "missing", now); rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for missing, got (%v, %v)", rec, err)
	}
}

func TestGetIdempotency_ScopedPerUser(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "u1", favScope, "k2", 200, `{"ok":true}`, time.Hour); err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	rec, err := GetIdempotency(ctx, db, "u1", favScope, "k2", time.Now())
	if err != nil || rec.Status != 200 || rec.Response != `{"ok":true}` {
		t.Fatalf("GetIdempotency = %+v, %v", rec, err)
	}
	if _, err := GetIdempotency(ctx, db, "u2", favScope, "k2", time.Now()); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
	if _, err := GetIdempotency(ctx, db, "u1", "DELETE /v1/payees/t1/favorite", "k2", time.Now()); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for other scope, got %v", err)
	}
}

func TestCreateIdempotency_SuccessAndDuplicate(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	ctx := context.Background()

	ttl := 90 * time.Minute
	start := time.Now().UTC()

	rec, err := CreateIdempotency(ctx, db, "u9", favScope, "k9", 202, "{}", ttl)
	if err != nil {
		t.Fatalf("CreateIdempotency error: %v", err)
	}
	if rec.ID == "" || rec.UserID != "u9" || rec.Scope != favScope || rec.Key != "k9" || rec.Status != 202 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	// Loose bound to avoid timing flakes.
	if !(rec.ExpiresAt.After(start) && rec.ExpiresAt.Before(start.Add(2*time.Hour))) {
		t.Fatalf("unexpected ExpiresAt: %v", rec.ExpiresAt)
	}

	if _, err := CreateIdempotency(ctx, db, "u9", favScope, "k9", 200, "{}", ttl); err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestCreateIdempotency_Error_NoTable(t *testing.T) {
	db := newTestDB(t)
	_, err := CreateIdempotency(context.Background(), db, "uX", favScope, "kX", 200, "", time.Minute)
	if err == nil {
		t.Fatalf("expected error when table is missing")
	}
	if err == ErrDuplicate {
		t.Fatalf("expected non-duplicate error, got ErrDuplicate")
	}
}
