package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/tbourn/go-wallet-backend/internal/http/middleware"
	"github.com/tbourn/go-wallet-backend/internal/services"
	"github.com/tbourn/go-wallet-backend/internal/utils"
)

func TestListPayees_UsesPayeeLimits(t *testing.T) {
	var gotLimit int
	svc := stubAccountSvc{
		listPayees: func(_ context.Context, _ string, p, l int) (services.Page[services.PayeeItem], error) {
			gotLimit = l
			return services.Page[services.PayeeItem]{Data: []services.PayeeItem{}, Pagination: utils.NewPageInfo(p, l, 0)}, nil
		},
	}
	r := newRouter(New(svc, stubTxSvc{}, nil, Limits{}), "u1", nil)

	if w := do(r, http.MethodGet, "/v1/accounts/payees", nil, nil); w.Code != http.StatusOK || gotLimit != 10 {
		t.Fatalf("default: status=%d limit=%d", w.Code, gotLimit)
	}
	w := do(r, http.MethodGet, "/v1/accounts/payees?limit=21", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("limit above payee max: status=%d", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Error.Message != "must be less than or equal to 20" {
		t.Fatalf("unexpected message %q", env.Error.Message)
	}
}

func TestSearchPayees_RequiresQ(t *testing.T) {
	var gotQ string
	svc := stubAccountSvc{
		searchPayees: func(_ context.Context, _ string, q string, p, l int) (services.Page[services.PayeeItem], error) {
			gotQ = q
			return services.Page[services.PayeeItem]{Data: []services.PayeeItem{{PayeeID: "t1", Name: "Billy"}}, Pagination: utils.NewPageInfo(p, l, 1)}, nil
		},
	}
	r := newRouter(New(svc, stubTxSvc{}, nil, Limits{}), "u1", nil)

	w := do(r, http.MethodGet, "/v1/accounts/payees/search", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Error.Code != "VALIDATION_ERROR" || env.Error.Message != "Required parameter 'q' is missing" {
		t.Fatalf("unexpected envelope %+v", env.Error)
	}

	if w := do(r, http.MethodGet, "/v1/accounts/payees/search?q=bil", nil, nil); w.Code != http.StatusOK || gotQ != "bil" {
		t.Fatalf("search: status=%d q=%q", w.Code, gotQ)
	}
}

func TestSetFavorite_BodyFailures(t *testing.T) {
	r := newRouter(New(stubAccountSvc{}, stubTxSvc{}, nil, Limits{}), "u1", nil)

	w := do(r, http.MethodPut, "/v1/accounts/payees/t1/favorite", jsonBody("{oops"), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed: status=%d", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Error.Code != "INVALID_REQUEST_BODY" || env.Error.Message != "Request body is missing or malformed" {
		t.Fatalf("unexpected envelope %+v", env.Error)
	}

	w = do(r, http.MethodPut, "/v1/accounts/payees/t1/favorite", jsonBody("{}"), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing field: status=%d", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Error.Code != "VALIDATION_ERROR" || env.Error.Message != "favorite is required" {
		t.Fatalf("unexpected envelope %+v", env.Error)
	}
}

func TestSetFavorite_FalseIsAcceptedAndNotFoundMapped(t *testing.T) {
	var gotFav = true
	svc := stubAccountSvc{
		setFavorite: func(_ context.Context, _ string, id string, fav bool) (*services.PayeeItem, error) {
			if id == "nope" {
				return nil, services.ErrPayeeNotFound
			}
			gotFav = fav
			return &services.PayeeItem{PayeeID: id, IsFavorite: fav}, nil
		},
	}
	r := newRouter(New(svc, stubTxSvc{}, nil, Limits{}), "u1", nil)

	w := do(r, http.MethodPut, "/v1/accounts/payees/t1/favorite", jsonBody(`{"favorite":false}`), nil)
	if w.Code != http.StatusOK || gotFav {
		t.Fatalf("favorite=false: status=%d gotFav=%v", w.Code, gotFav)
	}

	w = do(r, http.MethodPut, "/v1/accounts/payees/nope/favorite", jsonBody(`{"favorite":true}`), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Error.Code != "PAYEE_NOT_FOUND" || env.Error.Message != "Payee not found" {
		t.Fatalf("domain triple not forwarded: %+v", env.Error)
	}
}

func TestSetFavorite_IdempotentReplay(t *testing.T) {
	calls := 0
	svc := stubAccountSvc{
		setFavorite: func(_ context.Context, _ string, id string, fav bool) (*services.PayeeItem, error) {
			calls++
			return &services.PayeeItem{PayeeID: id, Name: "Billy", IsFavorite: fav}, nil
		},
	}
	idem := newMemIdem()
	lookup := func(ctx context.Context, u, scope, key string, _ time.Time) (bool, error) {
		rec, _ := idem.Get(ctx, u, scope, key)
		return rec != nil, nil
	}
	r := newRouter(New(svc, stubTxSvc{}, idem, Limits{}), "u1", lookup)
	hdr := map[string]string{middleware.HeaderIdempotencyKey: "key-1"}

	w1 := do(r, http.MethodPut, "/v1/accounts/payees/t1/favorite", jsonBody(`{"favorite":true}`), hdr)
	if w1.Code != http.StatusOK || idem.saves != 1 {
		t.Fatalf("first: status=%d saves=%d", w1.Code, idem.saves)
	}

	// The retry replays even with a different body.
	w2 := do(r, http.MethodPut, "/v1/accounts/payees/t1/favorite", jsonBody(`{"favorite":false}`), hdr)
	if w2.Code != http.StatusOK || w2.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("replay: status=%d headers=%v", w2.Code, w2.Header())
	}
	if calls != 1 {
		t.Fatalf("service must not run on replay, calls=%d", calls)
	}
	if w1.Body.String() != w2.Body.String() {
		t.Fatalf("replayed body differs: %s vs %s", w1.Body.String(), w2.Body.String())
	}
	var item services.PayeeItem
	if err := json.Unmarshal(w2.Body.Bytes(), &item); err != nil || !item.IsFavorite {
		t.Fatalf("unexpected replay body %s (%v)", w2.Body.String(), err)
	}

	// Another payee with the same key is a different scope.
	w3 := do(r, http.MethodPut, "/v1/accounts/payees/t2/favorite", jsonBody(`{"favorite":true}`), hdr)
	if w3.Code != http.StatusOK || w3.Header().Get("Idempotency-Replayed") != "" || calls != 2 {
		t.Fatalf("other scope: status=%d calls=%d", w3.Code, calls)
	}
}

func TestSetFavorite_InvalidIdempotencyKey(t *testing.T) {
	r := newRouter(New(stubAccountSvc{}, stubTxSvc{}, newMemIdem(), Limits{}), "u1", nil)
	w := do(r, http.MethodPut, "/v1/accounts/payees/t1/favorite", jsonBody(`{"favorite":true}`),
		map[string]string{middleware.HeaderIdempotencyKey: "bad key!"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Error.Code != "INVALID_IDEMPOTENCY_KEY" {
		t.Fatalf("unexpected envelope %+v", env.Error)
	}
}
