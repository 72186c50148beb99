package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storyfeed-backend/internal/common/errors"
	"storyfeed-backend/internal/common/middleware"
	"storyfeed-backend/internal/features/user/models"
	"storyfeed-backend/internal/features/user/service"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/users/statistic", h.getStatistic)

	users := router.Group("/users")
	users.Use(middleware.RequireAuth())
	{
		users.GET("", h.list)
		users.POST("", h.create)
		users.GET("/me", h.getMe)
		users.GET("/stats", h.getStats)
		users.GET("/:id", h.getByID)
		users.PUT("/:id", h.update)
		users.DELETE("/:id", h.delete)
	}
}

// @Summary List users
// @Description Admin only. Newest first; search matches email or name.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param search query string false "Email or name substring"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} models.UsersResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /users [get]
func (h *UserHandler) list(c *gin.Context) {
	actor, _ := middleware.CurrentIdentity(c)
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	users, err := h.service.ListUsers(c.Request.Context(), actor, c.Query("search"), limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// @Summary Create user
// @Description Admin only. Role defaults to viewer.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body models.CreateUserRequest true "New user"
// @Success 201 {object} models.UserEnvelope
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /users [post]
func (h *UserHandler) create(c *gin.Context) {
	var input models.CreateUserRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.NewValidationError("body", err.Error()))
		return
	}

	actor, _ := middleware.CurrentIdentity(c)
	user, err := h.service.CreateUser(c.Request.Context(), actor, input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, models.UserEnvelope{Message: "User created successfully", User: user})
}

// @Summary Get current user
// @Description Returns the caller and records the visit in last_login_at
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserEnvelope
// @Failure 401 {object} middleware.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) getMe(c *gin.Context) {
	actor, _ := middleware.CurrentIdentity(c)
	user, err := h.service.GetMe(c.Request.Context(), actor.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.UserEnvelope{User: user})
}

// @Summary User counts per role
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserStats
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /users/stats [get]
func (h *UserHandler) getStats(c *gin.Context) {
	actor, _ := middleware.CurrentIdentity(c)
	stats, err := h.service.GetUserStats(c.Request.Context(), actor)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary Monthly platform statistic
// @Tags users
// @Produce json
// @Success 200 {object} models.PlatformStatistic
// @Failure 500 {object} middleware.ErrorResponse
// @Router /users/statistic [get]
func (h *UserHandler) getStatistic(c *gin.Context) {
	stats, err := h.service.GetStatistic(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary Get user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.UserEnvelope
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) getByID(c *gin.Context) {
	actor, _ := middleware.CurrentIdentity(c)
	user, err := h.service.GetUser(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.UserEnvelope{User: user})
}

// @Summary Update user
// @Description Name and password follow ownership; role changes follow the role table
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param input body models.UpdateUserRequest true "Fields to change"
// @Success 200 {object} models.UserEnvelope
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) update(c *gin.Context) {
	var input models.UpdateUserRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.NewValidationError("body", err.Error()))
		return
	}

	actor, _ := middleware.CurrentIdentity(c)
	user, err := h.service.UpdateUser(c.Request.Context(), actor, c.Param("id"), input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.UserEnvelope{Message: "User updated successfully", User: user})
}

// @Summary Delete user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.MessageResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) delete(c *gin.Context) {
	actor, _ := middleware.CurrentIdentity(c)
	if err := h.service.DeleteUser(c.Request.Context(), actor, c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "User deleted successfully"})
}
