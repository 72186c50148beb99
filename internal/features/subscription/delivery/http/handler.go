package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storyfeed-backend/internal/common/errors"
	"storyfeed-backend/internal/common/middleware"
	"storyfeed-backend/internal/features/subscription/models"
	"storyfeed-backend/internal/features/subscription/service"
)

type SubscriptionHandler struct {
	service service.SubscriptionService
}

func NewSubscriptionHandler(service service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{service: service}
}

func (h *SubscriptionHandler) RegisterRoutes(router *gin.RouterGroup) {
	subs := router.Group("/subscription")
	{
		subs.POST("", middleware.RequireAuth(), h.create)
		subs.GET("/:user_id", h.getByUser)
	}
}

// @Summary Create subscription
// @Description Records a paid subscription for the caller. A transaction is accepted once.
// @Tags subscription
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body models.CreateSubscriptionRequest true "Subscription"
// @Success 201 {object} models.SubscriptionEnvelope
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /subscription [post]
func (h *SubscriptionHandler) create(c *gin.Context) {
	var input models.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.NewValidationError("body", err.Error()))
		return
	}
	actor, _ := middleware.CurrentIdentity(c)
	sub, err := h.service.Create(c.Request.Context(), actor.UserID, input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, models.SubscriptionEnvelope{Message: "Subscription created successfully", Data: sub})
}

// @Summary Get a user's subscription
// @Description Latest subscription of the user
// @Tags subscription
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} models.SubscriptionEnvelope
// @Failure 404 {object} middleware.ErrorResponse
// @Router /subscription/{user_id} [get]
func (h *SubscriptionHandler) getByUser(c *gin.Context) {
	sub, err := h.service.GetByUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.SubscriptionEnvelope{Message: "Subscription retrieved successfully", Data: sub})
}
