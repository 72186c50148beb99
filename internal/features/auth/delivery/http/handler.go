package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storyfeed-backend/internal/common/errors"
	"storyfeed-backend/internal/common/middleware"
	"storyfeed-backend/internal/features/auth/models"
	"storyfeed-backend/internal/features/auth/service"
	usermodels "storyfeed-backend/internal/features/user/models"
)

type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.POST("/logout", middleware.RequireAuth(), h.logout)
	}
}

// @Summary Register
// @Description Creates a viewer account and opens a session
// @Tags auth
// @Accept json
// @Produce json
// @Param input body usermodels.RegisterRequest true "Credentials"
// @Success 201 {object} models.LoginResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) register(c *gin.Context) {
	var input usermodels.RegisterRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.NewValidationError("body", err.Error()))
		return
	}

	resp, err := h.service.Register(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param input body models.LoginRequest true "Credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) login(c *gin.Context) {
	var input models.LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.NewValidationError("body", err.Error()))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Logout
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} usermodels.MessageResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), middleware.BearerToken(c)); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, usermodels.MessageResponse{Message: "Logged out"})
}
