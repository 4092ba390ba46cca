package handlers

import (
	"time"

	portssvc "github.com/finwise/finwise_backend/internal/core/ports/services"
	"github.com/finwise/finwise_backend/internal/middleware"
	"github.com/finwise/finwise_backend/pkg/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	httpLimiter *limiter.Limiter,
) {
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:   []string{"X-Request-ID"},
		MaxAge:          12 * time.Hour,
	}))

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/", getHome)

	setupAPIV1Routes(r, cfg, services, httpLimiter)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	httpLimiter *limiter.Limiter,
) {
	// Apply rate limiting and AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.RateLimit(httpLimiter), middleware.AuthMiddleware(cfg.JWTSecret))

	registerUserRoutes(v1, services.User, services.Migration)
	registerConversionRoutes(v1, services.Conversion)
}
