package api

import (
	"net/http"
	"slices"

	"github.com/evetabi/slot/internal/api/handler"
	"github.com/evetabi/slot/internal/config"
	"github.com/evetabi/slot/internal/service"
	"github.com/evetabi/slot/internal/ws"
	"github.com/gin-gonic/gin"
)

// RouterDeps bundles every dependency needed to build the router.
// Populated once in main() and passed to SetupRouter.
type RouterDeps struct {
	SpinSvc *service.SpinService
	Hub     *ws.Hub
	Cfg     *config.Config
}

// SetupRouter creates and configures the main Gin engine with all routes,
// middleware and CORS.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// ── CORS ─────────────────────────────────────────────────────────────────
	r.Use(corsMiddleware(deps.Cfg))

	// ── Health check ─────────────────────────────────────────────────────────
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── Handlers ─────────────────────────────────────────────────────────────
	spinH := handler.NewSpinHandler(deps.SpinSvc, deps.Cfg)
	walletH := handler.NewWalletHandler(deps.SpinSvc)
	feedH := handler.NewFeedHandler(deps.SpinSvc)

	api := r.Group("/api")
	{
		api.POST("/spin", spinH.Spin)
		api.GET("/balance/:address", walletH.GetBalance)

		// ── Public feed ──────────────────────────────────────────────────────
		api.GET("/recent-wins", feedH.RecentWins)
		api.GET("/pool-stats", feedH.PoolStats)
		api.GET("/symbols", feedH.Symbols)
	}

	// ── WebSocket ─────────────────────────────────────────────────────────────
	if deps.Hub != nil {
		r.GET("/ws", func(c *gin.Context) {
			deps.Hub.ServeWs(c.Writer, c.Request)
		})
	}

	return r
}

// ── CORS helper ───────────────────────────────────────────────────────────────

// corsMiddleware returns a gin middleware that sets appropriate CORS headers.
// Outside production, or with no origins configured, all origins are allowed;
// otherwise only the configured ones.
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	allowed := cfg.Server.AllowedOrigins
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if !cfg.IsProd() || len(allowed) == 0 {
			c.Header("Access-Control-Allow-Origin", "*")
		} else if origin != "" && slices.Contains(allowed, origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
