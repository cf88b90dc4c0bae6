// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, admin auth, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-certified-backend/internal/artifacts"
	"github.com/tbourn/go-certified-backend/internal/config"
	"github.com/tbourn/go-certified-backend/internal/domain"
	"github.com/tbourn/go-certified-backend/internal/http/handlers"
	"github.com/tbourn/go-certified-backend/internal/http/middleware"
	"github.com/tbourn/go-certified-backend/internal/keys"
	"github.com/tbourn/go-certified-backend/internal/repo"
	"github.com/tbourn/go-certified-backend/internal/services"
)

// artifactCacheMaxAge is the public cache lifetime of artifact responses.
const artifactCacheMaxAge = 5 * time.Minute

// itemRepoShim adapts the repository free functions to the services.ItemRepo
// interface expected by ItemService and PlanService.
type itemRepoShim struct{}

// CreateItem proxies repo.CreateItem.
func (itemRepoShim) CreateItem(ctx context.Context, db *gorm.DB, title, topic string, sourceURL *string) (*domain.Item, error) {
	return repo.CreateItem(ctx, db, title, topic, sourceURL)
}

// GetItem proxies repo.GetItem.
func (itemRepoShim) GetItem(ctx context.Context, db *gorm.DB, id string) (*domain.Item, error) {
	return repo.GetItem(ctx, db, id)
}

// CountItems proxies repo.CountItems (pagination support).
func (itemRepoShim) CountItems(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountItems(ctx, db)
}

// ListItemsPage proxies repo.ListItemsPage (pagination support).
func (itemRepoShim) ListItemsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Item, error) {
	return repo.ListItemsPage(ctx, db, offset, limit)
}

// SetItemLock proxies repo.SetItemLock.
func (itemRepoShim) SetItemLock(ctx context.Context, db *gorm.DB, id string, lock domain.Lock, planJSON, notes string) error {
	return repo.SetItemLock(ctx, db, id, lock, planJSON, notes)
}

// ItemsStats proxies repo.ItemsStats (ETag support).
func (itemRepoShim) ItemsStats(ctx context.Context, db *gorm.DB) (int64, *time.Time, error) {
	return repo.ItemsStats(ctx, db)
}

// idempotencyStore persists publish responses in the idempotency table.
type idempotencyStore struct {
	db  *gorm.DB
	ttl time.Duration
}

// Lookup returns the recorded response for (caller, item, key), if still valid.
func (s idempotencyStore) Lookup(ctx context.Context, callerID, itemID, key string, now time.Time) (string, int, bool) {
	rec, err := repo.FindReplay(ctx, s.db, repo.ReplayScope{UserID: callerID, ItemID: itemID, Key: key}, now)
	if err != nil {
		return "", 0, false
	}
	return rec.ArtifactID, rec.Status, true
}

// Save records a completed publish after clearing expired records, so a key
// whose record lapsed can be reused. A concurrent duplicate is not an error.
func (s idempotencyStore) Save(ctx context.Context, callerID, itemID, key, artifactID string, status int) error {
	now := time.Now().UTC()
	if _, err := repo.PurgeExpiredReplays(ctx, s.db, now); err != nil {
		return err
	}
	_, err := repo.SaveReplay(ctx, s.db, repo.ReplayScope{UserID: callerID, ItemID: itemID, Key: key}, artifactID, status, now, s.ttl)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return err
}

// exists adapts Lookup to the middleware's lookup signature.
func (s idempotencyStore) exists(ctx context.Context, callerID, itemID, key string, now time.Time) (bool, error) {
	_, _, ok := s.Lookup(ctx, callerID, itemID, key, now)
	return ok, nil
}

// Pipeline carries the collaborators built at startup that the services
// need beyond the database.
type Pipeline struct {
	Runner  services.ProposalRunner
	Checker services.PlanChecker
	Store   artifacts.BlobStore
	Keys    *keys.KeyStore
	Audit   *services.AuditLog
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), CORS and security
// headers, health and metrics endpoints, and then mounts the versioned API
// under /api/v*: admin routes under /admin and public routes under
// /certified.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. AccessLog: structured logs with secret scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. CORS and Security headers
//
// Per group:
//   - admin: NoStore → AdminAuth → Idempotency validator → Rate limiter (bypass on replay)
//   - public: Rate limiter (per IP), public cache headers on artifact routes
func RegisterRoutes(r *gin.Engine, db *gorm.DB, p Pipeline, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.AccessLog(middleware.AccessLogOptions{
		MaskHeaders: []string{middleware.HeaderIdempotencyKey},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) CORS posture (safe defaults: allow all if none configured)
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderAdminToken, middleware.HeaderIdempotencyKey, "If-None-Match"}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "ETag", "Location", middleware.HeaderIdempotencyReplayed}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← repo/db/pipeline
	items := itemRepoShim{}
	idem := idempotencyStore{db: db, ttl: cfg.IdempotencyTTL}
	deps := handlers.Deps{
		Items:            services.NewItemService(db, items),
		Plans:            services.NewPlanService(db, items, p.Runner, p.Checker, p.Audit),
		Publisher:        services.NewPublishService(db, p.Store, p.Keys, p.Audit),
		Verifier:         services.NewVerifyService(db, p.Store, p.Keys, p.Audit),
		Keys:             p.Keys,
		Idempotency:      idem,
		AuditPreview:     cfg.Audit.Preview,
		ArtifactBasePath: joinPath(cfg.APIBasePath, "/certified/artifacts"),
	}
	if p.Audit != nil {
		deps.Audit = p.Audit
	}
	h := handlers.New(deps)

	// Token-bucket rate limiters per caller/IP, one budget per group
	adminRL := middleware.NewRateLimiter(middleware.GroupAdmin, cfg.RateRPS, cfg.RateBurst, middleware.KeyByCaller())
	publicRL := middleware.NewRateLimiter(middleware.GroupPublic, cfg.RateRPS, cfg.RateBurst, middleware.KeyByCaller())

	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)

	// Admin API
	admin := api.Group("/admin")
	admin.Use(
		middleware.NoStore(),
		middleware.AdminAuth(cfg.Cert.AdminToken),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, idem.exists),
		adminRL.Handler(),
	)
	{
		admin.POST("/items", h.CreateItem)
		admin.GET("/items", h.ListItems)
		admin.GET("/items/:id", h.GetItem)
		admin.POST("/items/:id/plan", h.PlanItem)
		admin.PUT("/items/:id/lock", h.LockPlan)
		admin.POST("/items/:id/publish", h.PublishItem)
	}

	// Public API
	pub := api.Group("/certified")
	pub.Use(publicRL.Handler())
	{
		pub.POST("/plan", h.RunPlan)
		pub.POST("/verify", h.Verify)
		pub.GET("/pubkey", h.GetPublicKey)
		pub.GET("/audit", h.GetAudit)

		art := pub.Group("/artifacts")
		art.Use(middleware.PublicArtifact(artifactCacheMaxAge))
		art.GET("", h.ListArtifacts)
		art.GET("/:id", h.GetArtifact)
	}
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

// joinPath prefixes path with base, treating "/" (or empty) as root.
func joinPath(base, path string) string {
	if base == "" || base == "/" {
		return path
	}
	return base + path
}
