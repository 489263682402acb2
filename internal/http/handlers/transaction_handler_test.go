package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/tbourn/go-wallet-backend/internal/services"
)

func TestListTransactions_OK(t *testing.T) {
	var gotAcc, gotCursor string
	var gotLimit int
	svc := stubTxSvc{
		list: func(_ context.Context, _ string, acc, cur string, l int) (*services.TransactionsPage, error) {
			gotAcc, gotCursor, gotLimit = acc, cur, l
			return &services.TransactionsPage{
				Items:      []services.TransactionItem{{TransactionID: "tx-1", Name: "Transaction - 1", IsBank: true}},
				NextCursor: "next",
			}, nil
		},
	}
	r := newRouter(New(stubAccountSvc{}, svc, nil, Limits{}), "u1", nil)

	w := do(r, http.MethodGet, "/v1/accounts/acc-1/transactions?cursor=abc&limit=5", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if gotAcc != "acc-1" || gotCursor != "abc" || gotLimit != 5 {
		t.Fatalf("service got (%s,%s,%d)", gotAcc, gotCursor, gotLimit)
	}
	var page services.TransactionsPage
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil || page.NextCursor != "next" || len(page.Items) != 1 {
		t.Fatalf("unexpected body %s (%v)", w.Body.String(), err)
	}

	do(r, http.MethodGet, "/v1/accounts/acc-1/transactions", nil, nil)
	if gotLimit != 20 || gotCursor != "" {
		t.Fatalf("defaults: limit=%d cursor=%q", gotLimit, gotCursor)
	}
}

func TestListTransactions_Failures(t *testing.T) {
	svc := stubTxSvc{
		list: func(_ context.Context, _ string, acc, cur string, _ int) (*services.TransactionsPage, error) {
			if cur == "bad" {
				return nil, services.ErrInvalidCursor
			}
			return nil, services.ErrAccountNotFound
		},
	}
	r := newRouter(New(stubAccountSvc{}, svc, nil, Limits{}), "u1", nil)

	cases := []struct {
		target string
		status int
		code   string
	}{
		{"/v1/accounts/acc-1/transactions?limit=nope", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"/v1/accounts/acc-1/transactions?limit=101", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"/v1/accounts/acc-1/transactions?cursor=bad", http.StatusBadRequest, "INVALID_CURSOR"},
		{"/v1/accounts/missing/transactions", http.StatusNotFound, "ACCOUNT_NOT_FOUND"},
	}
	for _, tc := range cases {
		w := do(r, http.MethodGet, tc.target, nil, nil)
		if w.Code != tc.status {
			t.Fatalf("%s: status=%d", tc.target, w.Code)
		}
		if env := decodeEnvelope(t, w); env.Error.Code != tc.code || env.Error.TraceID == "" || env.Error.TraceID == "N/A" {
			t.Fatalf("%s: unexpected envelope %+v", tc.target, env.Error)
		}
	}
}
