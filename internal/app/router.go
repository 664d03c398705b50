package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deskgate/server/internal/module/session"
	"github.com/deskgate/server/internal/shared/middleware"
)

// setupRouter builds the HTTP surface: operational endpoints in the
// clear, the widget API behind session verification, maintenance ops
// behind the admin subject list on top of that.
func (a *App) setupRouter() *gin.Engine {
	if a.config.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.Recovery(a.logger),
		middleware.RequestID(),
		middleware.Logging(a.logger),
		middleware.Metrics(a.metrics),
		middleware.CORS(a.config.Server.AllowedOrigins),
	)

	r.GET("/health", a.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	a.sessionHandler.RegisterPublicRoutes(api)

	authed := api.Group("", session.RequireSession(a.sessionManager))
	a.sessionHandler.RegisterRoutes(authed)
	a.ticketHandler.RegisterRoutes(authed)
	a.kbHandler.RegisterRoutes(authed)

	admin := authed.Group("/admin", session.RequireAdmin(a.config.Session.AdminSubjects))
	admin.POST("/cache/cleanup", a.handleCacheCleanup)
	admin.DELETE("/cache", a.handleCacheClear)

	return r
}

// handleHealth reports liveness plus the state of both cache tiers.
func (a *App) handleHealth(c *gin.Context) {
	durable := "disabled"
	if a.redis != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := a.redis.Ping(ctx).Err(); err != nil {
			durable = "unavailable"
		} else {
			durable = "ok"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"cache": gin.H{
			"memory_entries": a.store.Len(),
			"durable":        durable,
		},
	})
}

// handleCacheCleanup sweeps expired entries on demand.
func (a *App) handleCacheCleanup(c *gin.Context) {
	removed := a.store.Cleanup(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// handleCacheClear empties both cache tiers.
func (a *App) handleCacheClear(c *gin.Context) {
	a.store.Clear(c.Request.Context())
	c.Status(http.StatusNoContent)
}
