package v1

import (
	"riddlehunt/config"
	"riddlehunt/handlers/auth"
	"riddlehunt/handlers/challenge"
	"riddlehunt/middleware"
	"riddlehunt/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Services the v1 API is built on
type Services struct {
	Auth       *services.AuthService
	Challenges *services.ChallengeService
	Logger     logrus.FieldLogger
}

// Register the endpoints for the v1 API
func Register(r *gin.Engine, svc Services) {
	v1 := r.Group("/api/v1")

	// Add metrics middleware to all routes
	v1.Use(middleware.MetricsMiddleware())

	rateLimiter := middleware.NewRateLimiter("global", config.DefaultRateLimitConfig)
	v1.Use(middleware.RateLimiterMiddleware(rateLimiter))

	RegisterPingRoutes(v1)
	auth.RegisterRoutes(v1, auth.NewHandler(svc.Auth, svc.Logger))
	challenge.RegisterRoutes(v1, challenge.NewHandler(svc.Challenges, svc.Logger), middleware.AuthMiddleware(svc.Auth))

	// Register metrics endpoint
	RegisterMetricsRoutes(v1)
	RegisterSwaggerRoutes(v1)
}
