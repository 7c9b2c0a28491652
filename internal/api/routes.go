package api

import (
	"context"
	"time"

	"github.com/RishiKendai/winnow/internal/config"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(ctx context.Context, cfg *config.Config, deps Dependencies) *gin.Engine {
	router := gin.New()

	handler := NewHandler(deps, cfg.MaxConcurrentCompute, cfg.ComputationTimeout)

	rateLimiter := NewRateLimiter(cfg.RateLimitRPS, int(cfg.RateLimitRPS*2))
	go sweepLimiters(ctx, rateLimiter, 10*time.Minute)

	// Middleware
	router.Use(gin.Recovery())
	router.Use(MetricsMiddleware())
	router.Use(ErrorHandlerMiddleware())

	// Health endpoint (no auth)
	router.GET("/health", handler.Health)

	// API routes (with auth and rate limiting)
	api := router.Group("/api/v1")
	api.Use(JWTAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	api.Use(RateLimitMiddleware(rateLimiter))
	{
		api.POST("/compare", handler.Compare)
		api.POST("/jobs", handler.SubmitJob)
		api.GET("/jobs/:id/status", handler.JobStatus)
		api.GET("/reports", handler.ListReports)
		api.GET("/reports/:id", handler.GetReport)
	}

	return router
}

func sweepLimiters(ctx context.Context, limiter *RateLimiter, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Sweep()
		}
	}
}
