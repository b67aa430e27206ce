package auth

import (
	"riddlehunt/config"
	"riddlehunt/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the token endpoints
// r: the RouterGroup to which routes are added
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	loginRateLimiter := middleware.NewRateLimiter("login", config.LoginRateLimitConfig)

	r.POST("/login", middleware.RateLimiterMiddleware(loginRateLimiter), h.Login)
	r.POST("/token/refresh", h.Refresh)
}
