package challenge

import (
	"net/http"

	"riddlehunt/middleware"
	"riddlehunt/services"
	"riddlehunt/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const errNotAuthenticated = "Authentication credentials were not provided."

// Handler serves the riddle and answer endpoints for authenticated teams
type Handler struct {
	challenges *services.ChallengeService
	logger     logrus.FieldLogger
}

func NewHandler(challenges *services.ChallengeService, logger logrus.FieldLogger) *Handler {
	return &Handler{challenges: challenges, logger: logger}
}

// GetRiddle returns the riddle assigned to the authenticated team
// @Summary Get assigned riddle
// @Description Returns the team's riddle, or only the completion flag once solved
// @Tags Challenge
// @Produce json
// @Success 200 {object} RiddleResponse
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /riddle [get]
// @Security Bearer
func (h *Handler) GetRiddle(c *gin.Context) {
	team, ok := middleware.GetTeamFromRequest(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, errNotAuthenticated)
		return
	}

	result, err := h.challenges.GetAssignedRiddle(c.Request.Context(), team)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	if result.IsComplete {
		c.JSON(http.StatusOK, RiddleResponse{Detail: services.MsgAlreadyDone, IsComplete: true})
		return
	}
	c.JSON(http.StatusOK, RiddleResponse{RiddleText: result.RiddleText})
}

// SubmitAnswer checks the authenticated team's final answer
// @Summary Submit final answer
// @Description Compares the answer with the stored solution, ignoring case and surrounding whitespace
// @Tags Challenge
// @Accept json
// @Produce json
// @Param request body SubmitRequest true "Answer"
// @Success 200 {object} SubmitResponse
// @Failure 400 {object} SubmitResponse
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /submit [post]
// @Security Bearer
func (h *Handler) SubmitAnswer(c *gin.Context) {
	team, ok := middleware.GetTeamFromRequest(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, errNotAuthenticated)
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, services.ErrNoAnswer)
		return
	}

	result, err := h.challenges.SubmitAnswer(c.Request.Context(), team, req.Answer)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	status := http.StatusOK
	if !result.IsComplete {
		status = http.StatusBadRequest
	}
	c.JSON(status, SubmitResponse{Detail: result.Detail(), IsComplete: result.IsComplete})
}
