package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storyfeed-backend/internal/common/errors"
	"storyfeed-backend/internal/features/social/models"
	"storyfeed-backend/internal/features/social/service"
)

type SocialHandler struct {
	service service.SocialService
}

func NewSocialHandler(service service.SocialService) *SocialHandler {
	return &SocialHandler{service: service}
}

func (h *SocialHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/social", h.share)
}

// @Summary Record a social share
// @Description Increments the share counter of a platform and returns its total
// @Tags social
// @Accept json
// @Produce json
// @Param input body models.ShareRequest true "Platform"
// @Success 201 {object} models.ShareResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /social [post]
func (h *SocialHandler) share(c *gin.Context) {
	var input models.ShareRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.NewValidationError("platform", "Platform is required"))
		return
	}
	count, err := h.service.Share(c.Request.Context(), input.Platform)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, models.ShareResponse{Message: "Social shared successfully", Count: count})
}
