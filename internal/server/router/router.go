package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares. webhook may
// be nil when the chat view is not configured.
func New(inventory *handlers.InventoryHandler, webhook *handlers.WebhookHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	// Item names may contain "/" once escaped.
	r.UseRawPath = true
	r.UnescapePathValues = true
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api/items")
	api.GET("", inventory.List)
	api.POST("", inventory.Create)
	api.POST("/:name/add", inventory.Add)
	api.POST("/:name/remove", inventory.Remove)

	if webhook != nil {
		r.GET("/webhook", webhook.Verify)
		r.POST("/webhook", webhook.Receive)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized", zap.Bool("webhook", webhook != nil))
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
