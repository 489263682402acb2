// Transaction HTTP handlers.
//
// GET /accounts/{accountId}/transactions lists an account's transactions,
// newest first, with keyset pagination: pass back `nextCursor` as `cursor`
// until it comes back empty.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-wallet-backend/internal/http/middleware"
)

// ListTransactions godoc
// @ID          listTransactions
// @Summary     List account transactions
// @Description Returns a keyset page of the account's transactions, newest first.
// @Tags        Transactions
// @Produce     json
// @Security    BearerAuth
//
// @Param       accountId  path   string  true  "Account id"
// @Param       cursor     query  string  false "Opaque cursor from a previous nextCursor"
// @Param       limit      query  int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} services.TransactionsPage
// @Failure     400  {object} apierr.Envelope "Validation error or invalid cursor"
// @Failure     401  {object} apierr.Envelope "Invalid token"
// @Failure     404  {object} apierr.Envelope "Account not found"
// @Failure     500  {object} apierr.Envelope "Internal error"
// @Router      /accounts/{accountId}/transactions [get]
func (h *Handlers) ListTransactions(c *gin.Context) {
	uid, okUser := currentUser(c)
	if !okUser {
		return
	}
	v, err := queryInts(c, intParam{Name: "limit", Default: h.limits.DefaultLimit, Min: 1, Max: h.limits.MaxLimit})
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.txSvc.List(c.Request.Context(), uid, c.Param("accountId"), c.Query("cursor"), v[0])
	if err != nil {
		fail(c, err)
		return
	}
	middleware.ObservePage("transactions", len(res.Items))
	ok(c, http.StatusOK, res)
}
