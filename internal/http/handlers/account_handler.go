// Account HTTP handlers.
//
// This file exposes the read endpoints for account resources:
//   - GET /accounts           (list, paginated, ETag support)
//   - GET /accounts/goals     (GOAL accounts, paginated)
//   - GET /accounts/loans     (LOAN accounts, paginated)
//   - GET /accounts/balances  (accountId -> amount)
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tbourn/go-wallet-backend/internal/http/middleware"
	"github.com/tbourn/go-wallet-backend/internal/services"
)

// AccountsPage is the swagger shape of services.Page[services.AccountSummary].
type AccountsPage = services.Page[services.AccountSummary]

// GoalsPage is the swagger shape of services.Page[services.GoalItem].
type GoalsPage = services.Page[services.GoalItem]

// LoansPage is the swagger shape of services.Page[services.LoanItem].
type LoansPage = services.Page[services.LoanItem]

// BalancesResponse maps account ids to balances.
type BalancesResponse struct {
	Balances map[string]decimal.Decimal `json:"balances" swaggertype:"object,string" example:"acc-001:62000"`
}

// ListAccounts godoc
// @ID          listAccounts
// @Summary     List accounts (paginated)
// @Description Returns a page of the user's accounts with balance, colour and goal status. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Accounts
// @Produce     json
// @Security    BearerAuth
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"accounts:u1:3:1735722000\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       limit          query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.AccountsPage
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} apierr.Envelope "Validation error"
// @Failure     401  {object} apierr.Envelope "Invalid token"
// @Failure     500  {object} apierr.Envelope "Internal error"
// @Router      /accounts [get]
func (h *Handlers) ListAccounts(c *gin.Context) {
	uid, okUser := currentUser(c)
	if !okUser {
		return
	}
	page, limit, err := pageParams(c, h.limits.DefaultLimit, h.limits.MaxLimit)
	if err != nil {
		fail(c, err)
		return
	}
	ctx := c.Request.Context()

	// ETag pre-check (best effort).
	if count, maxTS, err := h.accSvc.AccountsVersion(ctx, uid); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.UnixNano()
		}
		etag := fmt.Sprintf(`W/"accounts:%s:%d:%d:%d:%d"`, uid, count, ts, page, limit)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			notModified(c)
			return
		}
	}

	res, err := h.accSvc.ListAccounts(ctx, uid, page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	middleware.ObservePage("accounts", len(res.Data))
	ok(c, http.StatusOK, res)
}

// ListGoals godoc
// @ID          listGoals
// @Summary     List goal accounts
// @Description Returns a page of the user's GOAL accounts. Status is derived from goal progress (COMPLETED, IN_PROGRESS, NOT_STARTED, UNKNOWN).
// @Tags        Accounts
// @Produce     json
// @Security    BearerAuth
//
// @Param       page   query  int  false "Page number"     minimum(1) default(1)
// @Param       limit  query  int  false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.GoalsPage
// @Failure     400  {object} apierr.Envelope "Validation error"
// @Failure     401  {object} apierr.Envelope "Invalid token"
// @Failure     500  {object} apierr.Envelope "Internal error"
// @Router      /accounts/goals [get]
func (h *Handlers) ListGoals(c *gin.Context) {
	uid, okUser := currentUser(c)
	if !okUser {
		return
	}
	page, limit, err := pageParams(c, h.limits.DefaultLimit, h.limits.MaxLimit)
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.accSvc.ListGoals(c.Request.Context(), uid, page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	middleware.ObservePage("goals", len(res.Data))
	ok(c, http.StatusOK, res)
}

// ListLoans godoc
// @ID          listLoans
// @Summary     List loan accounts
// @Description Returns a page of the user's LOAN accounts.
// @Tags        Accounts
// @Produce     json
// @Security    BearerAuth
//
// @Param       page   query  int  false "Page number"     minimum(1) default(1)
// @Param       limit  query  int  false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.LoansPage
// @Failure     400  {object} apierr.Envelope "Validation error"
// @Failure     401  {object} apierr.Envelope "Invalid token"
// @Failure     500  {object} apierr.Envelope "Internal error"
// @Router      /accounts/loans [get]
func (h *Handlers) ListLoans(c *gin.Context) {
	uid, okUser := currentUser(c)
	if !okUser {
		return
	}
	page, limit, err := pageParams(c, h.limits.DefaultLimit, h.limits.MaxLimit)
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.accSvc.ListLoans(c.Request.Context(), uid, page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	middleware.ObservePage("loans", len(res.Data))
	ok(c, http.StatusOK, res)
}

// Balances godoc
// @ID          getBalances
// @Summary     Account balances
// @Description Returns the balance of every account the user holds, keyed by account id.
// @Tags        Accounts
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object} handlers.BalancesResponse
// @Failure     401  {object} apierr.Envelope "Invalid token"
// @Failure     500  {object} apierr.Envelope "Internal error"
// @Router      /accounts/balances [get]
func (h *Handlers) Balances(c *gin.Context) {
	uid, okUser := currentUser(c)
	if !okUser {
		return
	}
	res, err := h.accSvc.Balances(c.Request.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, BalancesResponse{Balances: res})
}
