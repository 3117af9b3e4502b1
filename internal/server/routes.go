package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	slogGin "github.com/samber/slog-gin"
)

const (
	IndexText  = "ghrelay is running"
	HealthText = "OK"

	defaultRate = "20-S"
)

func SetupRoutes() http.Handler {
	r := gin.New()

	httpLogger := slog.Default().WithGroup("http")
	r.Use(slogGin.NewWithConfig(httpLogger, slogGin.Config{
		DefaultLevel:     slog.LevelDebug,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		WithRequestID:    true,
	}))
	r.Use(gin.Recovery())
	r.Use(RateLimiter(defaultRate))

	r.GET("/", IndexHandler)
	r.GET("/health", HealthHandler)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "not found",
		})
	})

	return r.Handler()
}

func IndexHandler(ctx *gin.Context) {
	ctx.String(http.StatusOK, IndexText)
}

func HealthHandler(ctx *gin.Context) {
	ctx.String(http.StatusOK, HealthText)
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}
