package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"storyfeed-backend/internal/common/errors"
	"storyfeed-backend/internal/common/logger"
	"storyfeed-backend/internal/common/middleware"
	"storyfeed-backend/internal/features/catalog/models"
	"storyfeed-backend/internal/features/catalog/service"
	rplatform "storyfeed-backend/internal/platform/redis"
)

// Purger drops cached GET responses after a write.
type Purger interface {
	Purge(ctx context.Context, pattern string) (int64, error)
}

type CatalogHandler struct {
	service  service.CatalogService
	rdb      *rplatform.Client
	purger   Purger
	cacheTTL time.Duration
}

// NewCatalogHandler wires the catalog routes. rdb and purger may be nil, in
// which case public reads are served uncached.
func NewCatalogHandler(service service.CatalogService, rdb *rplatform.Client, purger Purger, cacheTTL time.Duration) *CatalogHandler {
	return &CatalogHandler{
		service:  service,
		rdb:      rdb,
		purger:   purger,
		cacheTTL: cacheTTL,
	}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	cached := middleware.RedisCache(h.rdb, h.cacheTTL)

	categories := router.Group("/categories")
	{
		categories.GET("", cached, h.listCategories)
		categories.GET("/:id", cached, h.getCategory)
		categories.POST("", middleware.RequireAdmin(), h.createCategory)
		categories.PUT("/:id", middleware.RequireAdmin(), h.updateCategory)
		categories.DELETE("/:id", middleware.RequireAdmin(), h.deleteCategory)
	}

	stories := router.Group("/stories")
	{
		stories.GET("", cached, h.listStories)
		stories.GET("/:id", cached, h.getStory)
		stories.POST("", middleware.RequireContributor(), h.createStory)
		stories.PUT("/:id", middleware.RequireContributor(), h.updateStory)
		stories.DELETE("/:id", middleware.RequireContributor(), h.deleteStory)
	}
}

// purge drops cached listings for both collections; a story write changes
// category listings with include_stories too.
func (h *CatalogHandler) purge(c *gin.Context) {
	if h.purger == nil {
		return
	}
	ctx := context.WithoutCancel(c.Request.Context())
	for _, pattern := range []string{"GET:*/categories*", "GET:*/stories*"} {
		n, err := h.purger.Purge(ctx, pattern)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("pattern", pattern).Msg("Failed to purge response cache")
			continue
		}
		logger.Ctx(ctx).Debug().Str("pattern", pattern).Int64("keys", n).Msg("Response cache purged")
	}
}

func page(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return limit, offset
}

// @Summary List categories
// @Description Ordered by name. With include_stories=true each category carries its published stories.
// @Tags catalog
// @Produce json
// @Param language query string false "Language code"
// @Param include_stories query bool false "Attach published stories"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} models.CategoriesResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /categories [get]
func (h *CatalogHandler) listCategories(c *gin.Context) {
	limit, offset := page(c)
	includeStories := strings.EqualFold(c.DefaultQuery("include_stories", "false"), "true")
	out, err := h.service.ListCategories(c.Request.Context(), c.Query("language"), includeStories, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Get category
// @Tags catalog
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} models.CategoryEnvelope
// @Failure 404 {object} middleware.ErrorResponse
// @Router /categories/{id} [get]
func (h *CatalogHandler) getCategory(c *gin.Context) {
	category, err := h.service.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.CategoryEnvelope{Category: category})
}

// @Summary Create category
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body models.CreateCategoryRequest true "Category"
// @Success 201 {object} models.CategoryEnvelope
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /categories [post]
func (h *CatalogHandler) createCategory(c *gin.Context) {
	var input models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.NewValidationError("body", err.Error()))
		return
	}
	category, err := h.service.CreateCategory(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.purge(c)
	c.JSON(http.StatusCreated, models.CategoryEnvelope{Message: "Category created successfully", Category: category})
}

// @Summary Update category
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Param input body models.UpdateCategoryRequest true "Fields to change"
// @Success 200 {object} models.CategoryEnvelope
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /categories/{id} [put]
func (h *CatalogHandler) updateCategory(c *gin.Context) {
	var input models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.NewValidationError("body", err.Error()))
		return
	}
	category, err := h.service.UpdateCategory(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.purge(c)
	c.JSON(http.StatusOK, models.CategoryEnvelope{Message: "Category updated successfully", Category: category})
}

// @Summary Delete category
// @Description Stories filed under the category are kept
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 200 {object} models.CategoryEnvelope
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /categories/{id} [delete]
func (h *CatalogHandler) deleteCategory(c *gin.Context) {
	if err := h.service.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	h.purge(c)
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

// @Summary List stories
// @Description Newest first
// @Tags catalog
// @Produce json
// @Param author query string false "Author"
// @Param language query string false "Language code"
// @Param category_id query string false "Category ID"
// @Param status query string false "draft, published or archived"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} models.StoriesResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /stories [get]
func (h *CatalogHandler) listStories(c *gin.Context) {
	limit, offset := page(c)
	filter := models.StoryFilter{
		Author:     c.Query("author"),
		Language:   c.Query("language"),
		CategoryID: c.Query("category_id"),
		Status:     models.StoryStatus(c.Query("status")),
	}
	out, err := h.service.ListStories(c.Request.Context(), filter, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Get story
// @Tags catalog
// @Produce json
// @Param id path string true "Story ID"
// @Success 200 {object} models.StoryEnvelope
// @Failure 404 {object} middleware.ErrorResponse
// @Router /stories/{id} [get]
func (h *CatalogHandler) getStory(c *gin.Context) {
	story, err := h.service.GetStory(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.StoryEnvelope{Story: story})
}

// @Summary Create story
// @Description Language defaults to en and status to draft
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body models.CreateStoryRequest true "Story"
// @Success 201 {object} models.StoryEnvelope
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /stories [post]
func (h *CatalogHandler) createStory(c *gin.Context) {
	var input models.CreateStoryRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.NewValidationError("body", err.Error()))
		return
	}
	actor, _ := middleware.CurrentIdentity(c)
	story, err := h.service.CreateStory(c.Request.Context(), actor, input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.purge(c)
	c.JSON(http.StatusCreated, models.StoryEnvelope{Message: "Story created successfully", Story: story})
}

// @Summary Update story
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Story ID"
// @Param input body models.UpdateStoryRequest true "Fields to change"
// @Success 200 {object} models.StoryEnvelope
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /stories/{id} [put]
func (h *CatalogHandler) updateStory(c *gin.Context) {
	var input models.UpdateStoryRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.NewValidationError("body", err.Error()))
		return
	}
	story, err := h.service.UpdateStory(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.purge(c)
	c.JSON(http.StatusOK, models.StoryEnvelope{Message: "Story updated successfully", Story: story})
}

// @Summary Delete story
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param id path string true "Story ID"
// @Success 200 {object} models.StoryEnvelope
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /stories/{id} [delete]
func (h *CatalogHandler) deleteStory(c *gin.Context) {
	if err := h.service.DeleteStory(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	h.purge(c)
	c.JSON(http.StatusOK, gin.H{"message": "Story deleted successfully"})
}
