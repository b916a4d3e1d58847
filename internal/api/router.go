package api

import (
	"time"

	"futuresBot/internal/adapters/logger"
	"futuresBot/internal/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Config struct {
	Handler *Handler
	Logger  ports.Logger
}

func NewRouter(cfg *Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(cfg.Logger))

	router.GET("/status", cfg.Handler.Status)
	registerTradeRoutes(router.Group("/trade"), cfg.Handler)
	registerDBRoutes(router.Group("/db"), cfg.Handler)

	return router
}

func registerTradeRoutes(router *gin.RouterGroup, h *Handler) {
	router.GET("/analyze", h.Analyze)
	router.GET("/execute", h.Execute)
	router.GET("/update-tsl", h.UpdateTrailingStop)
}

func registerDBRoutes(router *gin.RouterGroup, h *Handler) {
	router.GET("/trades", h.Trades)
	router.GET("/status/latest", h.LatestStatus)
}

// requestLogger tags each request with a cycle id and logs its outcome.
func requestLogger(log ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx := logger.WithCycleID(c.Request.Context(), uuid.NewString())
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		log.Debug(ctx, "HTTP request", map[string]interface{}{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
	}
}
