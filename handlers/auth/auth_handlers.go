package auth

import (
	"net/http"

	"riddlehunt/services"
	"riddlehunt/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handler serves the token endpoints
type Handler struct {
	auth   *services.AuthService
	logger logrus.FieldLogger
}

func NewHandler(auth *services.AuthService, logger logrus.FieldLogger) *Handler {
	return &Handler{auth: auth, logger: logger}
}

// Login authenticates a team
// @Summary Login
// @Description Exchange a team's username and password for an access and a refresh token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Team credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Username and password are required.")
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Refresh issues a new access token
// @Summary Refresh access token
// @Description Exchange a refresh token for a new access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} RefreshResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /token/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "A refresh token is required.")
		return
	}

	access, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, RefreshResponse{AccessToken: access})
}
