package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/talent-sift/internal/config"
	"github.com/ignatzorin/talent-sift/internal/http/handlers"
	"github.com/ignatzorin/talent-sift/internal/http/middleware"
	"github.com/ignatzorin/talent-sift/internal/service"
)

// runsPerPeriod - отдельный лимит на запуски workflow: каждый запуск дорогой.
const runsPerPeriod = 10

func SetupRouter(
	cfg *config.Config,
	tokenManager *service.TokenManager,
	healthHandler *handlers.HealthHandler,
	sessionHandler *handlers.SessionHandler,
	runHandler *handlers.RunHandler,
	boardHandler *handlers.BoardHandler,
	proxyHandler *handlers.ProxyHandler,
	wsHandler *handlers.WSHandler,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))

	// Публичные маршруты
	api.POST("/session", sessionHandler.Start)
	api.POST("/validateuser", runHandler.ValidateUser)

	// Прокси к внешним системам
	proxy := api.Group("")
	if cfg.ProxyKeyHash != "" {
		proxy.Use(middleware.ProxyKeyMiddleware(cfg.ProxyKeyHash))
	}
	{
		proxy.POST("/shortlist", proxyHandler.Shortlist)
		proxy.Any("/send-email", proxyHandler.SendEmail)
	}

	// Маршруты сессии
	protected := api.Group("")
	protected.Use(middleware.SessionMiddleware(tokenManager))
	{
		protected.GET("/session", sessionHandler.Get)
		protected.POST("/session/reset", sessionHandler.Reset)

		protected.POST("/runs", middleware.RateLimitMiddleware(runsPerPeriod, cfg.RateLimitPeriod), runHandler.CreateRun)
		protected.POST("/executions/search", runHandler.SearchExecutions)

		protected.POST("/board/load", boardHandler.Load)
		protected.GET("/board", boardHandler.Get)
		protected.PATCH("/board/filter", boardHandler.UpdateFilter)
		protected.DELETE("/board/filter", boardHandler.ResetFilter)
		protected.POST("/board/candidates/:id/shortlist", boardHandler.Shortlist)
		protected.GET("/board/export.xlsx", boardHandler.Export)

		protected.GET("/ws", wsHandler.Handle)
	}

	return r
}
