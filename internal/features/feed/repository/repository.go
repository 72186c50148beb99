package repository

import (
	"context"
	"errors"

	"storyfeed-backend/internal/features/feed/models"
	"storyfeed-backend/internal/platform/store"
	"storyfeed-backend/internal/platform/store/filter"
)

const (
	FeedsCollection    = "feeds"
	CommentsCollection = "feed_comments"
)

var (
	ErrFeedNotFound    = errors.New("feed not found")
	ErrCommentNotFound = errors.New("comment not found")
)

type FeedRepository interface {
	Create(ctx context.Context, feed *models.Feed) (string, error)
	GetByID(ctx context.Context, id string) (*models.Feed, error)
	List(ctx context.Context, f models.ListFilter, limit, offset int) ([]*models.Feed, error)
	Update(ctx context.Context, id string, fields store.Record) error
	// Mutate applies fn to the current entry atomically.
	Mutate(ctx context.Context, id string, fn func(*models.Feed) error) (*models.Feed, error)
	Delete(ctx context.Context, id string) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) (string, error)
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByFeed(ctx context.Context, feedID string, limit, offset int) ([]*models.Comment, error)
	Update(ctx context.Context, id string, fields store.Record) error
	Mutate(ctx context.Context, id string, fn func(*models.Comment) error) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
	DeleteByFeed(ctx context.Context, feedID string) (int64, error)
}

type feedRepository struct {
	feeds *store.Collection[models.Feed]
}

func NewFeedRepository(s store.Store) FeedRepository {
	return &feedRepository{feeds: store.NewCollection[models.Feed](s, FeedsCollection)}
}

func (r *feedRepository) Create(ctx context.Context, feed *models.Feed) (string, error) {
	return r.feeds.Insert(ctx, feed)
}

func (r *feedRepository) GetByID(ctx context.Context, id string) (*models.Feed, error) {
	feed, err := r.feeds.Get(ctx, id)
	return feed, translate(err, ErrFeedNotFound)
}

// List returns entries newest first.
func (r *feedRepository) List(ctx context.Context, f models.ListFilter, limit, offset int) ([]*models.Feed, error) {
	var preds []filter.Predicate
	if f.UserID != "" {
		preds = append(preds, filter.Eq(models.FieldUserID, f.UserID))
	}
	if f.AgentID != "" {
		preds = append(preds, filter.Eq(models.FieldAgentID, f.AgentID))
	}
	if f.Type != "" {
		preds = append(preds, filter.Eq(models.FieldType, string(f.Type)))
	}
	return r.feeds.Find(ctx, store.Query{
		Filter: filter.All(preds...),
		Sort:   []store.Sort{{Field: models.FieldCreatedAt, Desc: true}},
		Limit:  limit,
		Offset: offset,
	})
}

func (r *feedRepository) Update(ctx context.Context, id string, fields store.Record) error {
	return translate(r.feeds.Update(ctx, id, fields), ErrFeedNotFound)
}

func (r *feedRepository) Mutate(ctx context.Context, id string, fn func(*models.Feed) error) (*models.Feed, error) {
	feed, err := r.feeds.Mutate(ctx, id, fn)
	return feed, translate(err, ErrFeedNotFound)
}

func (r *feedRepository) Delete(ctx context.Context, id string) error {
	return translate(r.feeds.Delete(ctx, id), ErrFeedNotFound)
}

type commentRepository struct {
	comments *store.Collection[models.Comment]
}

func NewCommentRepository(s store.Store) CommentRepository {
	return &commentRepository{comments: store.NewCollection[models.Comment](s, CommentsCollection)}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) (string, error) {
	return r.comments.Insert(ctx, comment)
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := r.comments.Get(ctx, id)
	return comment, translate(err, ErrCommentNotFound)
}

// ListByFeed returns a thread oldest first.
func (r *commentRepository) ListByFeed(ctx context.Context, feedID string, limit, offset int) ([]*models.Comment, error) {
	return r.comments.Find(ctx, store.Query{
		Filter: filter.Eq(models.FieldFeedID, feedID),
		Sort:   []store.Sort{{Field: models.FieldCreatedAt}},
		Limit:  limit,
		Offset: offset,
	})
}

func (r *commentRepository) Update(ctx context.Context, id string, fields store.Record) error {
	return translate(r.comments.Update(ctx, id, fields), ErrCommentNotFound)
}

func (r *commentRepository) Mutate(ctx context.Context, id string, fn func(*models.Comment) error) (*models.Comment, error) {
	comment, err := r.comments.Mutate(ctx, id, fn)
	return comment, translate(err, ErrCommentNotFound)
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	return translate(r.comments.Delete(ctx, id), ErrCommentNotFound)
}

func (r *commentRepository) DeleteByFeed(ctx context.Context, feedID string) (int64, error) {
	return r.comments.DeleteWhere(ctx, filter.Eq(models.FieldFeedID, feedID))
}

func translate(err, notFound error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound
	}
	return err
}
