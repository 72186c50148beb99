package service

import (
	"context"
	"errors"

	apperrors "storyfeed-backend/internal/common/errors"
	"storyfeed-backend/internal/common/logger"
	"storyfeed-backend/internal/common/timeutil"
	"storyfeed-backend/internal/features/feed/models"
	"storyfeed-backend/internal/features/feed/repository"
)

// ToggleFeedLike adds userID to the entry's likes or removes it if present.
func (s *feedService) ToggleFeedLike(ctx context.Context, feedID, userID string) (*models.LikeResult, error) {
	var result models.LikeResult
	_, err := s.feeds.Mutate(ctx, feedID, func(feed *models.Feed) error {
		feed.LikeIDs, result.Liked = toggle(feed.LikeIDs, userID)
		feed.UpdatedAt = timeutil.NewTimestamp(s.now())
		result.LikeCount = len(feed.LikeIDs)
		return nil
	})
	if err != nil {
		return nil, feedError("toggle feed like", feedID, err)
	}
	return &result, nil
}

func (s *feedService) ToggleCommentLike(ctx context.Context, commentID, userID string) (*models.LikeResult, error) {
	var result models.LikeResult
	_, err := s.comments.Mutate(ctx, commentID, func(comment *models.Comment) error {
		comment.LikeIDs, result.Liked = toggle(comment.LikeIDs, userID)
		comment.UpdatedAt = timeutil.NewTimestamp(s.now())
		result.LikeCount = len(comment.LikeIDs)
		return nil
	})
	if err != nil {
		return nil, commentError("toggle comment like", commentID, err)
	}
	return &result, nil
}

// Retweet creates a new retweet entry carrying the source's agent fields and
// credits userID on the source once.
func (s *feedService) Retweet(ctx context.Context, userID, feedID, commentary string) (string, error) {
	source, err := s.feeds.GetByID(ctx, feedID)
	if err != nil {
		return "", feedError("get feed", feedID, err)
	}

	now := timeutil.NewTimestamp(s.now())
	retweetID, err := s.feeds.Create(ctx, &models.Feed{
		UserID:       userID,
		Content:      commentary,
		AgentID:      source.AgentID,
		AgentContent: source.AgentContent,
		LikeIDs:      []string{},
		RetweetIDs:   []string{},
		Type:         models.FeedTypeRetweet,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return "", apperrors.NewInternalError("create retweet", err)
	}

	_, err = s.feeds.Mutate(ctx, feedID, func(feed *models.Feed) error {
		if !contains(feed.RetweetIDs, userID) {
			feed.RetweetIDs = append(feed.RetweetIDs, userID)
		}
		feed.UpdatedAt = now
		return nil
	})
	if err != nil {
		// The retweet entry exists; report it together with the failed credit.
		appErr := feedError("credit retweet", feedID, err).WithDetail("retweet_id", retweetID)
		return retweetID, appErr
	}

	logger.Ctx(ctx).Debug().Str("feed_id", feedID).Str("retweet_id", retweetID).Str("user_id", userID).Msg("Feed retweeted")
	return retweetID, nil
}

// DeleteFeedCascade deletes the entry and then its comments. When the second
// step fails the returned result and error both say the entry is gone.
func (s *feedService) DeleteFeedCascade(ctx context.Context, feedID string) (*models.CascadeResult, error) {
	result := &models.CascadeResult{}

	if err := s.feeds.Delete(ctx, feedID); err != nil {
		return result, feedError("delete feed", feedID, err)
	}
	result.FeedDeleted = true

	n, err := s.comments.DeleteByFeed(ctx, feedID)
	if err != nil {
		logger.Error().Err(err).Str("feed_id", feedID).Msg("Feed deleted but its comments were not")
		return result, apperrors.NewInternalError("delete feed comments", err).
			WithDetail("feed_id", feedID).
			WithDetail("feed_deleted", true).
			WithDetail("comments_deleted", false)
	}
	result.CommentsDeleted = true
	result.CommentsRemoved = n
	return result, nil
}

// toggle removes id from ids if present and appends it otherwise. It reports
// whether id is present afterwards.
func toggle(ids []string, id string) ([]string, bool) {
	for i, existing := range ids {
		if existing == id {
			return append(ids[:i:i], ids[i+1:]...), false
		}
	}
	return append(ids, id), true
}

func contains(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

func feedError(op, id string, err error) *apperrors.AppError {
	if errors.Is(err, repository.ErrFeedNotFound) {
		return apperrors.NewNotFoundError("feed", id)
	}
	return apperrors.NewInternalError(op, err)
}

func commentError(op, id string, err error) *apperrors.AppError {
	if errors.Is(err, repository.ErrCommentNotFound) {
		return apperrors.NewNotFoundError("comment", id)
	}
	return apperrors.NewInternalError(op, err)
}
