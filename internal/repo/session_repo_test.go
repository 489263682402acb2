package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-wallet-backend/internal/domain"
)

func TestHashToken_StableAndOpaque(t *testing.T) {
	a, b := HashToken("secret"), HashToken("secret")
	if a != b || len(a) != 64 {
		t.Fatalf("unexpected hash %q / %q", a, b)
	}
	if a == "secret" || HashToken("other") == a {
		t.Fatalf("hash must differ from token and across tokens")
	}
}

func TestSessions_CreateFindExpire(t *testing.T) {
	db := newTestDB(t, &domain.Session{})
	ctx := context.Background()

	s, err := CreateSession(ctx, db, "u1", "tok-1", time.Hour)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if s.TokenHash != HashToken("tok-1") {
		t.Fatalf("token must be stored hashed, got %q", s.TokenHash)
	}

	uid, err := FindSession(ctx, db, "tok-1", time.Now())
	if err != nil || uid != "u1" {
		t.Fatalf("FindSession = %q, %v", uid, err)
	}
	if _, err := FindSession(ctx, db, "tok-1", time.Now().Add(2*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
	if _, err := FindSession(ctx, db, "unknown", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown token, got %v", err)
	}
}
