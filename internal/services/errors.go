// Package services defines the business logic for accounts, payees,
// transactions and sessions. This file centralizes the predictable failures
// service methods return.
//
// Each value is an *apierr.Error, so it already carries its wire status, code
// and message; the HTTP layer passes it to the error emitter unchanged.
// Unexpected persistence failures are wrapped with github.com/pkg/errors
// instead and surface as INTERNAL_ERROR.
package services

import (
	"net/http"

	"github.com/tbourn/go-wallet-backend/internal/apierr"
)

var (
	// ErrAccountNotFound indicates that the account does not exist or is not
	// owned by the current user.
	ErrAccountNotFound = apierr.New(http.StatusNotFound, "ACCOUNT_NOT_FOUND", "Account not found")

	// ErrPayeeNotFound indicates that the payee id does not match any of the
	// current user's transactions.
	ErrPayeeNotFound = apierr.New(http.StatusNotFound, "PAYEE_NOT_FOUND", "Payee not found")

	// ErrInvalidCursor is returned when a transaction cursor cannot be decoded.
	ErrInvalidCursor = apierr.New(http.StatusBadRequest, "INVALID_CURSOR", "Cursor is invalid or expired")

	// ErrInvalidToken is returned when a bearer token is unknown or expired.
	ErrInvalidToken = apierr.New(http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
)
