// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, trace-id correlation, logging/redaction, error emission, panic
// recovery, metrics, CORS, security headers, idempotency, and rate limiting.
//
// Every failure on every path, unmatched routes included, leaves through
// middleware.WriteError and therefore renders the same envelope.
package httpapi

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-wallet-backend/internal/apierr"
	"github.com/tbourn/go-wallet-backend/internal/config"
	"github.com/tbourn/go-wallet-backend/internal/http/handlers"
	"github.com/tbourn/go-wallet-backend/internal/http/middleware"
	"github.com/tbourn/go-wallet-backend/internal/services"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the wallet API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. TraceID: inherit or mint the correlation id before anything can fail
//  3. gzip: wraps the writer for everything below, envelopes included
//  4. Logger: structured access log with redaction
//  5. ErrorHandler: render failures recorded by handlers
//  6. Recovery: panics become Unexpected envelopes
//  7. Body size limiter, metrics
//  8. CORS and security headers
//
// Authentication, idempotency and rate limiting are scoped to the API group
// because they depend on the resolved user.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	traceHeader := cfg.TraceHeader
	if traceHeader == "" {
		traceHeader = middleware.DefaultTraceHeader
	}

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.TraceID(traceHeader))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	r.Use(middleware.Logger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.Recovery())

	bodyCap := cfg.MaxBodyBytes
	if bodyCap <= 0 {
		bodyCap = 1 << 20
	}
	r.Use(limitBody(bodyCap))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(corsMiddleware(cfg, traceHeader)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:    cfg.Security.EnableHSTS,
		HSTSMaxAge:    cfg.Security.HSTSMaxAge,
		NoStore:       false,
		EnablePolicy:  true,
		ExposeHeaders: []string{traceHeader},
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		middleware.WriteError(c, &apierr.RouteNotFoundError{Method: c.Request.Method, Path: c.Request.URL.Path})
	})
	r.NoMethod(func(c *gin.Context) {
		middleware.WriteError(c, &apierr.MethodNotAllowedError{
			Method:  c.Request.Method,
			Allowed: allowedMethods(r.Routes(), c.Request.URL.Path),
		})
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← db
	accSvc := services.NewAccountService(db)
	txSvc := services.NewTransactionService(db)
	authSvc := services.NewAuthService(db)
	if cfg.SessionTTL > 0 {
		authSvc.TTL = cfg.SessionTTL
	}
	idemSvc := services.NewIdempotencyService(db, cfg.IdempotencyTTL)

	h := handlers.New(accSvc, txSvc, idemSvc, handlers.Limits{
		DefaultLimit:      cfg.Paging.DefaultLimit,
		MaxLimit:          cfg.Paging.MaxLimit,
		PayeeDefaultLimit: cfg.Paging.PayeeDefaultLimit,
		PayeeMaxLimit:     cfg.Paging.PayeeMaxLimit,
	})

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())

	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(
		middleware.BearerAuth(authSvc.ResolveToken),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, idemSvc.Exists),
		rl.Handler(),
	)
	{
		// Accounts
		api.GET("/accounts", h.ListAccounts)
		api.GET("/accounts/goals", h.ListGoals)
		api.GET("/accounts/loans", h.ListLoans)
		api.GET("/accounts/balances", h.Balances)

		// Payees
		api.GET("/accounts/payees", h.ListPayees)
		api.GET("/accounts/payees/search", h.SearchPayees)
		api.PUT("/accounts/payees/:payeeId/favorite", h.SetFavorite)

		// Transactions
		api.GET("/accounts/:accountId/transactions", h.ListTransactions)
	}
}

// corsMiddleware returns the CORS chain: allow-all when no origins are
// configured, otherwise an allowlist echo in front of gin-contrib/cors.
func corsMiddleware(cfg config.Config, traceHeader string) []gin.HandlerFunc {
	methods := []string{"GET", "PUT", "OPTIONS"}
	headers := []string{"Origin", "Content-Type", "Accept", middleware.HeaderAuthorization, middleware.HeaderIdempotencyKey, traceHeader}
	expose := []string{traceHeader, "ETag", "Retry-After", "Idempotency-Replayed", "Content-Length"}

	if len(cfg.CORS.AllowedOrigins) == 0 {
		return []gin.HandlerFunc{
			// Force ACAO: * even without an Origin header (health checks, curl).
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(cors.Config{
				AllowAllOrigins:  true,
				AllowMethods:     methods,
				AllowHeaders:     headers,
				ExposeHeaders:    expose,
				AllowCredentials: false, // must remain false with AllowAllOrigins
				MaxAge:           12 * time.Hour,
			}),
		}
	}

	allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
	for _, o := range cfg.CORS.AllowedOrigins {
		allowed[o] = struct{}{}
	}
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     methods,
			AllowHeaders:     headers,
			ExposeHeaders:    expose,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}),
	}
}

// allowedMethods lists the methods registered for any route pattern that
// matches path, sorted and de-duplicated. Nil means no pattern matched.
func allowedMethods(routes gin.RoutesInfo, path string) []string {
	seen := map[string]struct{}{}
	for _, rt := range routes {
		if matchPattern(rt.Path, path) {
			seen[rt.Method] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// matchPattern reports whether path satisfies a gin route pattern with
// :param and *catchall segments.
func matchPattern(pattern, path string) bool {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range ps {
		if strings.HasPrefix(seg, "*") {
			return true
		}
		if i >= len(xs) {
			return false
		}
		if strings.HasPrefix(seg, ":") {
			if xs[i] == "" {
				return false
			}
			continue
		}
		if seg != xs[i] {
			return false
		}
	}
	return len(ps) == len(xs)
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
