package service

import (
	"context"
	"strings"

	apperrors "storyfeed-backend/internal/common/errors"
	"storyfeed-backend/internal/common/logger"
	"storyfeed-backend/internal/common/timeutil"
	"storyfeed-backend/internal/common/validation"
	"storyfeed-backend/internal/features/access"
	"storyfeed-backend/internal/features/feed/models"
	"storyfeed-backend/internal/features/feed/repository"
	"storyfeed-backend/internal/platform/store"
)

type feedService struct {
	feeds    repository.FeedRepository
	comments repository.CommentRepository
	now      timeutil.Clock
}

func NewFeedService(feeds repository.FeedRepository, comments repository.CommentRepository, clock timeutil.Clock) FeedService {
	if clock == nil {
		clock = timeutil.Now
	}
	return &feedService{
		feeds:    feeds,
		comments: comments,
		now:      clock,
	}
}

func (s *feedService) CreateFeed(ctx context.Context, actor access.Identity, input models.CreateFeedRequest) (*models.Feed, error) {
	if err := validation.ValidateText(models.FieldContent, input.Content, validation.MaxContentLength); err != nil {
		return nil, err
	}
	if err := validation.ValidateText(models.FieldAgentID, input.AgentID, validation.MaxNameLength); err != nil {
		return nil, err
	}
	if err := validation.ValidateText(models.FieldAgentContent, input.AgentContent, validation.MaxContentLength); err != nil {
		return nil, err
	}

	now := timeutil.NewTimestamp(s.now())
	feed := &models.Feed{
		UserID:       actor.UserID,
		Content:      input.Content,
		AgentID:      input.AgentID,
		AgentContent: input.AgentContent,
		LikeIDs:      []string{},
		RetweetIDs:   []string{},
		Type:         models.FeedTypePost,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	id, err := s.feeds.Create(ctx, feed)
	if err != nil {
		return nil, apperrors.NewInternalError("create feed", err)
	}
	feed.ID = id
	return feed, nil
}

func (s *feedService) GetFeed(ctx context.Context, id string) (*models.Feed, error) {
	feed, err := s.feeds.GetByID(ctx, id)
	if err != nil {
		return nil, feedError("get feed", id, err)
	}
	return feed, nil
}

func (s *feedService) ListFeeds(ctx context.Context, f models.ListFilter, limit, offset int) (*models.FeedsResponse, error) {
	if f.Type != "" && !f.Type.Valid() {
		return nil, validation.ValidateOneOf(models.FieldType, string(f.Type), string(models.FeedTypePost), string(models.FeedTypeRetweet))
	}
	limit, offset = validation.NormalizePage(limit, offset)

	feeds, err := s.feeds.List(ctx, f, limit, offset)
	if err != nil {
		return nil, apperrors.NewInternalError("list feeds", err)
	}
	return &models.FeedsResponse{Feeds: feeds, Limit: limit, Offset: offset, Count: len(feeds)}, nil
}

func (s *feedService) UpdateFeed(ctx context.Context, actor access.Identity, id string, input models.UpdateFeedRequest) (*models.Feed, error) {
	if input.Content == nil && input.AgentContent == nil {
		return nil, apperrors.NewValidationError("body", "no valid fields to update")
	}
	feed, err := s.GetFeed(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanManageUsers(actor.Role, access.ActionUpdate, actor.UserID, feed.UserID) {
		return nil, apperrors.NewForbiddenError("only the author can edit this feed")
	}

	fields := store.Record{models.FieldUpdatedAt: timeutil.NewTimestamp(s.now())}
	if input.Content != nil {
		if err := validation.ValidateText(models.FieldContent, *input.Content, validation.MaxContentLength); err != nil {
			return nil, err
		}
		fields[models.FieldContent] = *input.Content
	}
	if input.AgentContent != nil {
		if err := validation.ValidateText(models.FieldAgentContent, *input.AgentContent, validation.MaxContentLength); err != nil {
			return nil, err
		}
		fields[models.FieldAgentContent] = *input.AgentContent
	}

	if err := s.feeds.Update(ctx, id, fields); err != nil {
		return nil, feedError("update feed", id, err)
	}
	return s.GetFeed(ctx, id)
}

func (s *feedService) DeleteFeed(ctx context.Context, actor access.Identity, id string) (*models.CascadeResult, error) {
	feed, err := s.GetFeed(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanManageUsers(actor.Role, access.ActionDelete, actor.UserID, feed.UserID) {
		return nil, apperrors.NewForbiddenError("only the author can delete this feed")
	}
	return s.DeleteFeedCascade(ctx, id)
}

// DeleteUserFeeds removes every entry of userID together with its comments.
// It stops at the first failure and returns how many entries were removed.
func (s *feedService) DeleteUserFeeds(ctx context.Context, actor access.Identity, userID string) (int64, error) {
	if !access.CanManageUsers(actor.Role, access.ActionDelete, actor.UserID, userID) {
		return 0, apperrors.NewForbiddenError("cannot delete feeds of another user")
	}

	feeds, err := s.feeds.List(ctx, models.ListFilter{UserID: userID}, 0, 0)
	if err != nil {
		return 0, apperrors.NewInternalError("list user feeds", err)
	}

	var deleted int64
	for _, feed := range feeds {
		if _, err := s.DeleteFeedCascade(ctx, feed.ID); err != nil {
			if appErr, ok := apperrors.AsAppError(err); ok {
				appErr.WithDetail("feeds_deleted", deleted)
			}
			return deleted, err
		}
		deleted++
	}

	logger.Info().Str("user_id", userID).Int64("deleted", deleted).Msg("User feeds deleted")
	return deleted, nil
}

func (s *feedService) CreateComment(ctx context.Context, actor access.Identity, input models.CreateCommentRequest) (*models.Comment, error) {
	content := strings.TrimSpace(input.Content)
	if err := validation.ValidateText(models.FieldContent, content, validation.MaxCommentLength); err != nil {
		return nil, err
	}
	if _, err := s.GetFeed(ctx, input.FeedID); err != nil {
		return nil, err
	}

	now := timeutil.NewTimestamp(s.now())
	comment := &models.Comment{
		UserID:    actor.UserID,
		FeedID:    input.FeedID,
		Content:   content,
		LikeIDs:   []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := s.comments.Create(ctx, comment)
	if err != nil {
		return nil, apperrors.NewInternalError("create comment", err)
	}
	comment.ID = id
	return comment, nil
}

func (s *feedService) ListComments(ctx context.Context, feedID string, limit, offset int) (*models.CommentsResponse, error) {
	limit, offset = validation.NormalizePage(limit, offset)
	comments, err := s.comments.ListByFeed(ctx, feedID, limit, offset)
	if err != nil {
		return nil, apperrors.NewInternalError("list comments", err)
	}
	return &models.CommentsResponse{Comments: comments, Limit: limit, Offset: offset, Count: len(comments)}, nil
}

func (s *feedService) UpdateComment(ctx context.Context, actor access.Identity, id string, input models.UpdateCommentRequest) (*models.Comment, error) {
	content := strings.TrimSpace(input.Content)
	if err := validation.ValidateText(models.FieldContent, content, validation.MaxCommentLength); err != nil {
		return nil, err
	}
	comment, err := s.getComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanManageUsers(actor.Role, access.ActionUpdate, actor.UserID, comment.UserID) {
		return nil, apperrors.NewForbiddenError("only the author can edit this comment")
	}

	err = s.comments.Update(ctx, id, store.Record{
		models.FieldContent:   content,
		models.FieldUpdatedAt: timeutil.NewTimestamp(s.now()),
	})
	if err != nil {
		return nil, commentError("update comment", id, err)
	}
	return s.getComment(ctx, id)
}

func (s *feedService) DeleteComment(ctx context.Context, actor access.Identity, id string) error {
	comment, err := s.getComment(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanManageUsers(actor.Role, access.ActionDelete, actor.UserID, comment.UserID) {
		return apperrors.NewForbiddenError("only the author can delete this comment")
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return commentError("delete comment", id, err)
	}
	return nil
}

// DeleteFeedComments clears a thread. Allowed for the feed's author.
func (s *feedService) DeleteFeedComments(ctx context.Context, actor access.Identity, feedID string) (int64, error) {
	feed, err := s.GetFeed(ctx, feedID)
	if err != nil {
		return 0, err
	}
	if !access.CanManageUsers(actor.Role, access.ActionDelete, actor.UserID, feed.UserID) {
		return 0, apperrors.NewForbiddenError("only the author can clear this thread")
	}
	n, err := s.comments.DeleteByFeed(ctx, feedID)
	if err != nil {
		return 0, apperrors.NewInternalError("delete feed comments", err)
	}
	return n, nil
}

func (s *feedService) getComment(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, commentError("get comment", id, err)
	}
	return comment, nil
}
