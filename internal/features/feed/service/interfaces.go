package service

import (
	"context"

	"storyfeed-backend/internal/features/access"
	"storyfeed-backend/internal/features/feed/models"
)

type FeedService interface {
	CreateFeed(ctx context.Context, actor access.Identity, input models.CreateFeedRequest) (*models.Feed, error)
	GetFeed(ctx context.Context, id string) (*models.Feed, error)
	ListFeeds(ctx context.Context, f models.ListFilter, limit, offset int) (*models.FeedsResponse, error)
	UpdateFeed(ctx context.Context, actor access.Identity, id string, input models.UpdateFeedRequest) (*models.Feed, error)
	DeleteFeed(ctx context.Context, actor access.Identity, id string) (*models.CascadeResult, error)
	DeleteUserFeeds(ctx context.Context, actor access.Identity, userID string) (int64, error)

	CreateComment(ctx context.Context, actor access.Identity, input models.CreateCommentRequest) (*models.Comment, error)
	ListComments(ctx context.Context, feedID string, limit, offset int) (*models.CommentsResponse, error)
	UpdateComment(ctx context.Context, actor access.Identity, id string, input models.UpdateCommentRequest) (*models.Comment, error)
	DeleteComment(ctx context.Context, actor access.Identity, id string) error
	DeleteFeedComments(ctx context.Context, actor access.Identity, feedID string) (int64, error)

	EngagementService
}

// EngagementService holds the like and retweet rules.
type EngagementService interface {
	ToggleFeedLike(ctx context.Context, feedID, userID string) (*models.LikeResult, error)
	Retweet(ctx context.Context, userID, feedID, commentary string) (string, error)
	ToggleCommentLike(ctx context.Context, commentID, userID string) (*models.LikeResult, error)
	DeleteFeedCascade(ctx context.Context, feedID string) (*models.CascadeResult, error)
}
