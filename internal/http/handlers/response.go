// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response helpers shared by all endpoints. Success
// bodies are written directly; failures are pushed onto the Gin context and
// rendered by middleware.ErrorHandler as the canonical envelope:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "error": {
//	    "status": 404,
//	    "code": "ACCOUNT_NOT_FOUND",
//	    "message": "Account not found",
//	    "traceId": "4bf92f3577b34da6a3ce929d0e0e4736"
//	  }
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// fail records err for the error emitter and stops the handler chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// okRaw writes a pre-serialized JSON body.
func okRaw(c *gin.Context, status int, body []byte) {
	c.Data(status, "application/json; charset=utf-8", body)
}

// notModified answers a conditional GET whose validator still matches.
func notModified(c *gin.Context) {
	c.Status(http.StatusNotModified)
}
