// Package httpapi wires the Gin engine: middleware stack, health and metrics
// endpoints, and the versioned pet API routes. Everything the handlers need
// (database, services, config) is injected here, so the package owns the one
// place where transport concerns like tracing, request correlation, rate
// limiting, and CORS are ordered relative to each other.
package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/tbourn/go-tamagotchi-backend/internal/config"
	"github.com/tbourn/go-tamagotchi-backend/internal/domain"
	"github.com/tbourn/go-tamagotchi-backend/internal/http/handlers"
	"github.com/tbourn/go-tamagotchi-backend/internal/http/middleware"
	"github.com/tbourn/go-tamagotchi-backend/internal/repo"
	"github.com/tbourn/go-tamagotchi-backend/internal/services"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"
)

// petRepoShim adapts the repository free functions to the services.PetRepo
// interface expected by the PetService. This keeps services decoupled from
// the concrete repo package while reusing existing functions.
type petRepoShim struct{}

// CreatePet proxies repo.CreatePet.
func (petRepoShim) CreatePet(ctx context.Context, db *gorm.DB, p *domain.Pet) error {
	return repo.CreatePet(ctx, db, p)
}

// ListPets proxies repo.ListPets.
func (petRepoShim) ListPets(ctx context.Context, db *gorm.DB) ([]domain.Pet, error) {
	return repo.ListPets(ctx, db)
}

// GetPet proxies repo.GetPet.
func (petRepoShim) GetPet(ctx context.Context, db *gorm.DB, id uint) (*domain.Pet, error) {
	return repo.GetPet(ctx, db, id)
}

// UpdatePet proxies repo.UpdatePet.
func (petRepoShim) UpdatePet(ctx context.Context, db *gorm.DB, p *domain.Pet) (int64, error) {
	return repo.UpdatePet(ctx, db, p)
}

// DeletePet proxies repo.DeletePet.
func (petRepoShim) DeletePet(ctx context.Context, db *gorm.DB, id uint) (int64, error) {
	return repo.DeletePet(ctx, db, id)
}

// RegisterRoutes attaches the middleware stack and every HTTP endpoint to
// the given engine, then mounts the versioned pet API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: mint/propagate the correlation id
//  3. RedactingLogger: structured access logs with PII scrubbing
//  4. Recovery: panics become JSON 500s after the logger has run
//  5. Body size limiter
//  6. Metrics
//  7. Idempotency validator: must precede the rate limiter so a detected
//     replay can bypass it
//  8. Rate limiter, per client IP
//  9. CORS and security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key",
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, petID, kind, key string, now time.Time) (bool, error) {
			id, err := strconv.ParseUint(petID, 10, 64)
			if err != nil || kind == "" {
				return false, nil
			}
			rec, err := repo.GetIdempotency(ctx, db, uint(id), domain.InteractionKind(kind), key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 8) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP())
	r.Use(rl.Handler())

	// 9) CORS: wildcard when no allowlist is configured
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// gin-contrib/cors only writes ACAO when an Origin header arrives;
		// set the wildcard unconditionally so curl-style calls see it too.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo the request Origin for allowlisted callers ahead of
		// gin-contrib/cors, which handles the preflight side.
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
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
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

	// Interactive API docs (disabled by default outside development)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Services and handlers
	petSvc := services.NewPetService(db, petRepoShim{})
	intSvc := &services.InteractionService{DB: db}
	h := handlers.New(petSvc, intSvc)
	h.IdempotencyTTL = cfg.IdempotencyTTL

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(gzip.Gzip(gzip.DefaultCompression))
	{
		// Pets
		api.POST("/pets", h.CreatePet)
		api.GET("/pets", h.ListPets)
		api.GET("/pets/:id", h.GetPet)
		api.PUT("/pets/:id", h.ReplacePet)
		api.DELETE("/pets/:id", h.DeletePet)

		// Interactions
		api.POST("/pets/:id/feedings", h.FeedPet)
		api.GET("/pets/:id/feedings", h.ListFeedings)
		api.POST("/pets/:id/playtimes", h.PlayWithPet)
		api.GET("/pets/:id/playtimes", h.ListPlaytimes)
		api.POST("/pets/:id/scoldings", h.ScoldPet)
		api.GET("/pets/:id/scoldings", h.ListScoldings)
	}
}

// limitBody caps every request body at maxBytes via http.MaxBytesReader;
// oversized bodies surface as read errors in the handler's bind call.
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
