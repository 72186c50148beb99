package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storyfeed-backend/internal/common/errors"
	"storyfeed-backend/internal/common/middleware"
	"storyfeed-backend/internal/features/guess/models"
	"storyfeed-backend/internal/features/guess/service"
)

type GuessHandler struct {
	service service.GuessService
}

func NewGuessHandler(service service.GuessService) *GuessHandler {
	return &GuessHandler{service: service}
}

func (h *GuessHandler) RegisterRoutes(router *gin.RouterGroup) {
	guess := router.Group("/guess")
	{
		guess.POST("/:session/ask", h.ask)
		guess.DELETE("/remove", middleware.RequireAdmin(), h.remove)
	}
}

// @Summary Ask as a guest
// @Description Anonymous, limited to two guesses per client IP per UTC day
// @Tags guess
// @Produce json
// @Param session path string true "Guest session"
// @Success 200 {object} models.GuessResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 429 {object} middleware.ErrorResponse
// @Router /guess/{session}/ask [post]
func (h *GuessHandler) ask(c *gin.Context) {
	quota, err := h.service.RecordGuess(c.Request.Context(), c.ClientIP())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.GuessResponse{
		Message:   "Guess recorded",
		SessionID: c.Param("session"),
		Quota:     *quota,
	})
}

// @Summary Reset an IP's guesses
// @Tags guess
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body models.RemoveGuessesRequest true "IP"
// @Success 200 {object} models.RemoveGuessesResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /guess/remove [delete]
func (h *GuessHandler) remove(c *gin.Context) {
	var input models.RemoveGuessesRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.NewValidationError("ip_address", "IP address is required"))
		return
	}
	n, err := h.service.RemoveGuesses(c.Request.Context(), input.IPAddress)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.RemoveGuessesResponse{
		Message: "Guesses for IP " + input.IPAddress + " have been removed",
		Removed: n,
	})
}
