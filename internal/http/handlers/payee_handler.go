// Payee HTTP handlers.
//
// This file exposes quick-payee endpoints:
//   - GET /accounts/payees                    (list, paginated)
//   - GET /accounts/payees/search?q=          (name search, paginated)
//   - PUT /accounts/payees/{payeeId}/favorite (set/clear favourite, idempotent)
//
// Idempotency:
// When the client supplies an Idempotency-Key and a previous request with the
// same key already completed for the same user and path, the stored response
// is replayed with `Idempotency-Replayed: true` and the service is not called.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-wallet-backend/internal/http/middleware"
	"github.com/tbourn/go-wallet-backend/internal/services"
)

// PayeesPage is the swagger shape of services.Page[services.PayeeItem].
type PayeesPage = services.Page[services.PayeeItem]

// FavoriteRequest is the JSON payload for marking a payee.
type FavoriteRequest struct {
	// Favorite sets (true) or clears (false) the flag.
	Favorite *bool `json:"favorite" binding:"required" example:"true"`
}

// ListPayees godoc
// @ID          listPayees
// @Summary     List quick payees
// @Description Returns distinct payees from the user's transaction history, most recent first, with favourite markers.
// @Tags        Payees
// @Produce     json
// @Security    BearerAuth
//
// @Param       page   query  int  false "Page number"     minimum(1) default(1)
// @Param       limit  query  int  false "Items per page"  minimum(1) maximum(20) default(10)
//
// @Success     200  {object} handlers.PayeesPage
// @Failure     400  {object} apierr.Envelope "Validation error"
// @Failure     401  {object} apierr.Envelope "Invalid token"
// @Failure     500  {object} apierr.Envelope "Internal error"
// @Router      /accounts/payees [get]
func (h *Handlers) ListPayees(c *gin.Context) {
	uid, okUser := currentUser(c)
	if !okUser {
		return
	}
	page, limit, err := pageParams(c, h.limits.PayeeDefaultLimit, h.limits.PayeeMaxLimit)
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.accSvc.ListPayees(c.Request.Context(), uid, page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	middleware.ObservePage("payees", len(res.Data))
	ok(c, http.StatusOK, res)
}

// SearchPayees godoc
// @ID          searchPayees
// @Summary     Search quick payees
// @Description Case-insensitive substring search over payee names.
// @Tags        Payees
// @Produce     json
// @Security    BearerAuth
//
// @Param       q      query  string  true  "Name fragment"   example(bil)
// @Param       page   query  int     false "Page number"     minimum(1) default(1)
// @Param       limit  query  int     false "Items per page"  minimum(1) maximum(20) default(10)
//
// @Success     200  {object} handlers.PayeesPage
// @Failure     400  {object} apierr.Envelope "Validation error"
// @Failure     401  {object} apierr.Envelope "Invalid token"
// @Failure     500  {object} apierr.Envelope "Internal error"
// @Router      /accounts/payees/search [get]
func (h *Handlers) SearchPayees(c *gin.Context) {
	uid, okUser := currentUser(c)
	if !okUser {
		return
	}
	q, err := requiredQuery(c, "q")
	if err != nil {
		fail(c, err)
		return
	}
	page, limit, err := pageParams(c, h.limits.PayeeDefaultLimit, h.limits.PayeeMaxLimit)
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.accSvc.SearchPayees(c.Request.Context(), uid, q, page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	middleware.ObservePage("payees", len(res.Data))
	ok(c, http.StatusOK, res)
}

// SetFavorite godoc
// @ID          setPayeeFavorite
// @Summary     Mark or unmark a favourite payee
// @Description Sets or clears the FAVORITE flag on a payee. Supports idempotency via the Idempotency-Key header (same key → same result).
// @Tags        Payees
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       payeeId          path    string  true  "Payee id"
// @Param       body             body    handlers.FavoriteRequest  true  "Favourite flag"
//
// @Success     200  {object} services.PayeeItem
// @Failure     400  {object} apierr.Envelope "Validation error or malformed body"
// @Failure     401  {object} apierr.Envelope "Invalid token"
// @Failure     404  {object} apierr.Envelope "Payee not found"
// @Failure     500  {object} apierr.Envelope "Internal error"
// @Router      /accounts/payees/{payeeId}/favorite [put]
func (h *Handlers) SetFavorite(c *gin.Context) {
	uid, okUser := currentUser(c)
	if !okUser {
		return
	}
	ctx := c.Request.Context()
	scope := middleware.IdempotencyScope(c)
	idemKey, _ := middleware.GetIdempotencyKey(c)

	// Idempotency (replay path).
	if idemKey != "" && middleware.IsReplay(c) && h.idem != nil {
		rec, err := h.idem.Get(ctx, uid, scope, idemKey)
		if err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency replay lookup failed")
		}
		if rec != nil {
			c.Header("Idempotency-Replayed", "true")
			okRaw(c, rec.Status, []byte(rec.Response))
			return
		}
	}

	var req FavoriteRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	item, err := h.accSvc.SetFavorite(ctx, uid, c.Param("payeeId"), *req.Favorite)
	if err != nil {
		fail(c, err)
		return
	}

	body, err := json.Marshal(item)
	if err != nil {
		fail(c, err)
		return
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" && h.idem != nil {
		if err := h.idem.Save(ctx, uid, scope, idemKey, http.StatusOK, string(body)); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency save failed")
		}
	}

	okRaw(c, http.StatusOK, body)
}
