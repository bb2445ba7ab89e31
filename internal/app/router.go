package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"managerh.io/managerh/internal/api/handlers"
	"managerh.io/managerh/internal/api/middleware"
	"managerh.io/managerh/internal/config"
	"managerh.io/managerh/internal/observability"
	"managerh.io/managerh/internal/pkg/logger"
	"managerh.io/managerh/internal/session"
)

const apiBasePath = "/api/v1"

// defaultAllowedOrigins is used when no origin is configured: the local
// front-end dev servers.
var defaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

func newRouter(cfg *config.Config, server *handlers.Server, sessions *session.Manager) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		observability.GinMiddleware(),
		cors.New(buildCORSConfig(cfg)),
		middleware.MustOpenAPIValidator(apiBasePath, cfg.Server.ValidateResponses),
		middleware.ErrorHandler(),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	level := gin.WrapH(logger.LevelHandler())
	router.GET("/log/level", level)
	router.PUT("/log/level", level)

	limiter := middleware.NewLoginLimiter(middleware.LoginLimiterConfig{
		PerMinute: cfg.Security.LoginRatePerMinute,
		Burst:     cfg.Security.LoginBurst,
	})
	server.RegisterRoutes(router.Group(apiBasePath), middleware.SessionAuth(sessions), limiter.Middleware())

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "message": "route not found"})
	})
	return router
}

// buildCORSConfig turns the server settings into a cors.Config. A "*" origin
// is honored only with UnsafeAllowAllOrigins, and then credentials are off
// since browsers refuse credentialed wildcard responses.
func buildCORSConfig(cfg *config.Config) cors.Config {
	out := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: cfg.Server.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}

	if cfg.Server.UnsafeAllowAllOrigins {
		out.AllowAllOrigins = true
		out.AllowCredentials = false
		return out
	}

	origins := make([]string, 0, len(cfg.Server.AllowedOrigins))
	for _, o := range cfg.Server.AllowedOrigins {
		o = strings.TrimSpace(o)
		if o == "" || o == "*" {
			continue
		}
		origins = append(origins, o)
	}
	if len(origins) == 0 {
		origins = append(origins, defaultAllowedOrigins...)
	}
	out.AllowOrigins = origins
	return out
}
