package challenge

import (
	"riddlehunt/config"
	"riddlehunt/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the riddle and answer endpoints
// r: the RouterGroup to which routes are added
// auth: middleware resolving the bearer token to a team
func RegisterRoutes(r *gin.RouterGroup, h *Handler, auth gin.HandlerFunc) {
	submitRateLimiter := middleware.NewRateLimiter("submit", config.SubmitRateLimitConfig)

	r.GET("/riddle", auth, h.GetRiddle)
	r.POST("/submit", auth, middleware.RateLimiterMiddleware(submitRateLimiter), h.SubmitAnswer)
}
