package handlers

import (
	"net/http"
	"time"

	"ewaste-exchange/internal/config"
	"ewaste-exchange/internal/metrics"
	"ewaste-exchange/internal/middleware"
	"ewaste-exchange/internal/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterDeps collects everything the HTTP surface is built from. Metrics and
// RateLimiter may be nil.
type RouterDeps struct {
	Config      *config.Config
	Log         *zap.Logger
	Metrics     *metrics.Manager
	RateLimiter *ratelimit.RateLimiter

	Health    *HealthHandler
	Scrap     *ScrapHandler
	Pickups   *PickupHandler
	Recycling *RecyclingHandler
	Admin     *AdminHandler
}

// NewRouter assembles middleware and routes
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(deps.Log))

	origins := deps.Config.Server.AllowedOrigins
	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
		if deps.Config.Metrics.Enabled {
			r.GET(deps.Config.Metrics.Path, gin.WrapH(deps.Metrics.Handler()))
		}
	}

	r.GET("/health", deps.Health.Check)

	api := r.Group("/api")

	listings := api.Group("/listings")
	{
		listings.GET("/scrap", deps.Scrap.ListScrap)
		listings.GET("/scrap/heatmap", deps.Scrap.Heatmap)
		listings.GET("/scrap/search", deps.Scrap.Search)
	}

	writes := []gin.HandlerFunc{}
	if deps.RateLimiter != nil {
		writes = append(writes, deps.RateLimiter.Middleware())
	}
	if deps.Config.Auth.Enabled {
		writes = append(writes, middleware.JWTAuth(deps.Config.Auth.JWTSecret))
	}
	pickups := api.Group("/pickups", writes...)
	{
		pickups.POST("/schedule", deps.Pickups.Schedule)
		pickups.PATCH("/complete/:pickupId", deps.Pickups.Complete)
	}

	recycling := api.Group("/recycling")
	{
		recycling.GET("", deps.Recycling.List)
		recycling.GET("/nearby", deps.Recycling.Nearby)
		recycling.GET("/:id", deps.Recycling.Get)
	}

	// Admin routes always require an admin token, independent of auth.enabled
	// which only governs the pickup endpoints
	if secret := deps.Config.Auth.JWTSecret; secret != "" {
		admin := api.Group("/admin", middleware.JWTAuth(secret), middleware.RequireRole(middleware.RoleAdmin))
		{
			admin.GET("/stats", deps.Admin.GetStats)
			admin.POST("/scrap/run", deps.Admin.RunScrap)
			admin.GET("/scrap/runs", deps.Admin.GetScrapRuns)
			admin.GET("/ratelimit", deps.Admin.GetRateLimit)
			admin.POST("/ratelimit/reset", deps.Admin.ResetRateLimit)
			admin.POST("/search/reindex", deps.Admin.Reindex)
		}
	} else {
		deps.Log.Warn("no jwt secret configured, admin routes are not mounted")
	}
	if !deps.Config.Auth.Enabled {
		deps.Log.Warn("auth is disabled, pickup endpoints accept unauthenticated requests")
	}

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "Route not found.")
	})

	return r
}

// requestLogger logs one line per request and any errors attached by handlers
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			log.Error(c.Errors.String(), fields...)
			return
		}
		log.Debug("request", fields...)
	}
}
