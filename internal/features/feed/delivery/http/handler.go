package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storyfeed-backend/internal/common/errors"
	"storyfeed-backend/internal/common/middleware"
	"storyfeed-backend/internal/features/feed/models"
	"storyfeed-backend/internal/features/feed/service"
)

type FeedHandler struct {
	service service.FeedService
}

func NewFeedHandler(service service.FeedService) *FeedHandler {
	return &FeedHandler{service: service}
}

func (h *FeedHandler) RegisterRoutes(router *gin.RouterGroup) {
	authed := router.Group("")
	authed.Use(middleware.RequireAuth())

	feed := authed.Group("/feed")
	{
		feed.POST("", h.create)
		feed.GET("/:id", h.getByID)
		feed.PUT("/:id", h.update)
		feed.DELETE("/:id", h.delete)
		feed.POST("/:id/like", h.like)
		feed.POST("/:id/retweet", h.retweet)
		feed.GET("/:id/comments", h.listComments)
		feed.DELETE("/:id/comments", h.deleteComments)
	}
	authed.GET("/feeds", h.list)
	authed.GET("/user/feeds/:user_id", h.listByUser)
	authed.DELETE("/user/feeds/:user_id", h.deleteByUser)

	comments := authed.Group("/feed-comment")
	{
		comments.POST("", h.createComment)
		comments.PUT("/:id", h.updateComment)
		comments.DELETE("/:id", h.deleteComment)
		comments.POST("/:id/like", h.likeComment)
	}
}

func page(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return limit, offset
}

// @Summary Create feed entry
// @Tags feed
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body models.CreateFeedRequest true "Entry"
// @Success 201 {object} models.FeedEnvelope
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /feed [post]
func (h *FeedHandler) create(c *gin.Context) {
	var input models.CreateFeedRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.NewValidationError("body", err.Error()))
		return
	}
	actor, _ := middleware.CurrentIdentity(c)
	feed, err := h.service.CreateFeed(c.Request.Context(), actor, input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, models.FeedEnvelope{Message: "Feed created successfully", Feed: feed})
}

// @Summary List feed entries
// @Description Newest first
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param user_id query string false "Author"
// @Param agent_id query string false "Agent"
// @Param type query string false "post or retweet"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} models.FeedsResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /feeds [get]
func (h *FeedHandler) list(c *gin.Context) {
	limit, offset := page(c)
	filter := models.ListFilter{
		UserID:  c.Query("user_id"),
		AgentID: c.Query("agent_id"),
		Type:    models.FeedType(c.Query("type")),
	}
	feeds, err := h.service.ListFeeds(c.Request.Context(), filter, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, feeds)
}

// @Summary List a user's feed entries
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "Author"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} models.FeedsResponse
// @Router /user/feeds/{user_id} [get]
func (h *FeedHandler) listByUser(c *gin.Context) {
	limit, offset := page(c)
	feeds, err := h.service.ListFeeds(c.Request.Context(), models.ListFilter{UserID: c.Param("user_id")}, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, feeds)
}

// @Summary Delete a user's feed entries
// @Description Removes every entry of the user with its comments
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "Author"
// @Success 200 {object} models.DeleteManyResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /user/feeds/{user_id} [delete]
func (h *FeedHandler) deleteByUser(c *gin.Context) {
	actor, _ := middleware.CurrentIdentity(c)
	n, err := h.service.DeleteUserFeeds(c.Request.Context(), actor, c.Param("user_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.DeleteManyResponse{Message: "Feeds deleted successfully", Deleted: n})
}

// @Summary Get feed entry
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param id path string true "Feed ID"
// @Success 200 {object} models.FeedEnvelope
// @Failure 404 {object} middleware.ErrorResponse
// @Router /feed/{id} [get]
func (h *FeedHandler) getByID(c *gin.Context) {
	feed, err := h.service.GetFeed(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.FeedEnvelope{Feed: feed})
}

// @Summary Update feed entry
// @Tags feed
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Feed ID"
// @Param input body models.UpdateFeedRequest true "Fields to change"
// @Success 200 {object} models.FeedEnvelope
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /feed/{id} [put]
func (h *FeedHandler) update(c *gin.Context) {
	var input models.UpdateFeedRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.NewValidationError("body", err.Error()))
		return
	}
	actor, _ := middleware.CurrentIdentity(c)
	feed, err := h.service.UpdateFeed(c.Request.Context(), actor, c.Param("id"), input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.FeedEnvelope{Message: "Feed updated successfully", Feed: feed})
}

// @Summary Delete feed entry
// @Description Deletes the entry and then its comments. A 500 carries feed_deleted and comments_deleted details.
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param id path string true "Feed ID"
// @Success 200 {object} models.DeleteFeedResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /feed/{id} [delete]
func (h *FeedHandler) delete(c *gin.Context) {
	actor, _ := middleware.CurrentIdentity(c)
	result, err := h.service.DeleteFeed(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.DeleteFeedResponse{Message: "Feed deleted successfully", CascadeResult: *result})
}

// @Summary Toggle feed like
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param id path string true "Feed ID"
// @Success 200 {object} models.LikeResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /feed/{id}/like [post]
func (h *FeedHandler) like(c *gin.Context) {
	actor, _ := middleware.CurrentIdentity(c)
	result, err := h.service.ToggleFeedLike(c.Request.Context(), c.Param("id"), actor.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.LikeResponse{Message: likeMessage("Feed", result.Liked), LikeResult: *result})
}

// @Summary Retweet feed entry
// @Tags feed
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Feed ID"
// @Param input body models.RetweetRequest false "Commentary"
// @Success 200 {object} models.RetweetResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /feed/{id}/retweet [post]
func (h *FeedHandler) retweet(c *gin.Context) {
	var input models.RetweetRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			_ = c.Error(errors.NewValidationError("body", err.Error()))
			return
		}
	}
	actor, _ := middleware.CurrentIdentity(c)
	id, err := h.service.Retweet(c.Request.Context(), actor.UserID, c.Param("id"), input.Content)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.RetweetResponse{Message: "Feed retweeted successfully", RetweetID: id})
}

// @Summary List comments of a feed entry
// @Description Oldest first
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Feed ID"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} models.CommentsResponse
// @Router /feed/{id}/comments [get]
func (h *FeedHandler) listComments(c *gin.Context) {
	limit, offset := page(c)
	comments, err := h.service.ListComments(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// @Summary Delete all comments of a feed entry
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Feed ID"
// @Success 200 {object} models.DeleteManyResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /feed/{id}/comments [delete]
func (h *FeedHandler) deleteComments(c *gin.Context) {
	actor, _ := middleware.CurrentIdentity(c)
	n, err := h.service.DeleteFeedComments(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.DeleteManyResponse{Message: "Comments deleted successfully", Deleted: n})
}

// @Summary Create comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body models.CreateCommentRequest true "Comment"
// @Success 201 {object} models.CommentEnvelope
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /feed-comment [post]
func (h *FeedHandler) createComment(c *gin.Context) {
	var input models.CreateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.NewValidationError("body", err.Error()))
		return
	}
	actor, _ := middleware.CurrentIdentity(c)
	comment, err := h.service.CreateComment(c.Request.Context(), actor, input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, models.CommentEnvelope{Message: "Comment created successfully", Comment: comment})
}

// @Summary Update comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Param input body models.UpdateCommentRequest true "Comment"
// @Success 200 {object} models.CommentEnvelope
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /feed-comment/{id} [put]
func (h *FeedHandler) updateComment(c *gin.Context) {
	var input models.UpdateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.NewValidationError("body", err.Error()))
		return
	}
	actor, _ := middleware.CurrentIdentity(c)
	comment, err := h.service.UpdateComment(c.Request.Context(), actor, c.Param("id"), input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.CommentEnvelope{Message: "Comment updated successfully", Comment: comment})
}

// @Summary Delete comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {object} models.DeleteManyResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /feed-comment/{id} [delete]
func (h *FeedHandler) deleteComment(c *gin.Context) {
	actor, _ := middleware.CurrentIdentity(c)
	if err := h.service.DeleteComment(c.Request.Context(), actor, c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.DeleteManyResponse{Message: "Comment deleted successfully", Deleted: 1})
}

// @Summary Toggle comment like
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {object} models.LikeResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /feed-comment/{id}/like [post]
func (h *FeedHandler) likeComment(c *gin.Context) {
	actor, _ := middleware.CurrentIdentity(c)
	result, err := h.service.ToggleCommentLike(c.Request.Context(), c.Param("id"), actor.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.LikeResponse{Message: likeMessage("Comment", result.Liked), LikeResult: *result})
}

func likeMessage(subject string, liked bool) string {
	if liked {
		return subject + " liked successfully"
	}
	return subject + " unliked successfully"
}
