package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-wallet-backend/internal/apierr"
)

var errUnknownToken = apierr.New(http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")

func fakeResolver(_ context.Context, token string) (string, error) {
	if token == "good" {
		return "u-1", nil
	}
	return "", errUnknownToken
}

func TestBearerAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	captureLogger(t)

	cases := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"missing", "", http.StatusBadRequest, apierr.CodeValidation, "Missing required header: Authorization"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "INVALID_TOKEN", ErrMalformedAuthorization.Message},
		{"empty token", "Bearer   ", http.StatusUnauthorized, "INVALID_TOKEN", ErrMalformedAuthorization.Message},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token"},
		{"ok", "Bearer good", http.StatusOK, "", ""},
		{"scheme case-insensitive", "bearer good", http.StatusOK, "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(TraceID(""))
			r.Use(BearerAuth(fakeResolver))
			r.GET("/me", func(c *gin.Context) {
				uid, ok := UserID(c)
				if !ok || uid != "u-1" {
					t.Fatalf("expected user u-1, got %q ok=%v", uid, ok)
				}
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set(HeaderAuthorization, tc.header)
			}
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tc.wantStatus, w.Body.String())
			}
			if tc.wantCode == "" {
				return
			}
			env := decodeEnvelope(t, w)
			if env.Error.Code != tc.wantCode || env.Error.Message != tc.wantMsg || env.Error.Status != tc.wantStatus {
				t.Fatalf("unexpected envelope: %+v", env.Error)
			}
		})
	}
}

func TestUserID_Absent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := UserID(c); ok {
		t.Fatalf("expected no user")
	}
	c.Set(userIDKey, 7)
	if _, ok := UserID(c); ok {
		t.Fatalf("non-string user id must be ignored")
	}
}
