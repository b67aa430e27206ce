package middleware

import (
	"net/http"
	"strings"

	"riddlehunt/utils/response"

	"github.com/gin-gonic/gin"
)

const TeamContextKey = "team_id"

// Authenticator resolves a bearer access token to a team identity
type Authenticator interface {
	Authenticate(accessToken string) (string, error)
}

// AuthMiddleware requires a valid "Authorization: Bearer <token>" header
// and stores the team identity in the context
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header must contain two space-delimited values")
			c.Abort()
			return
		}

		team, err := auth.Authenticate(parts[1])
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Given token not valid for any token type")
			c.Abort()
			return
		}

		c.Set(TeamContextKey, team)
		c.Next()
	}
}

// GetTeamFromRequest returns the team identity set by AuthMiddleware
func GetTeamFromRequest(c *gin.Context) (string, bool) {
	team := c.GetString(TeamContextKey)
	return team, team != ""
}
