package repository

import (
	"context"
	"errors"
	"time"

	"storyfeed-backend/internal/features/subscription/models"
	"storyfeed-backend/internal/platform/store"
	"storyfeed-backend/internal/platform/store/filter"
)

const Collection = "subscriptions"

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrDuplicate            = errors.New("subscription already recorded")
)

type SubscriptionRepository interface {
	// Create fails with ErrDuplicate when the id is taken.
	Create(ctx context.Context, sub *models.Subscription) (string, error)
	GetByID(ctx context.Context, id string) (*models.Subscription, error)
	// LatestByUser returns the most recently created subscription of the user.
	LatestByUser(ctx context.Context, userID string) (*models.Subscription, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}

type subscriptionRepository struct {
	subs *store.Collection[models.Subscription]
}

func NewSubscriptionRepository(s store.Store) SubscriptionRepository {
	return &subscriptionRepository{subs: store.NewCollection[models.Subscription](s, Collection)}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *models.Subscription) (string, error) {
	id, err := r.subs.Insert(ctx, sub)
	if errors.Is(err, store.ErrDuplicateID) {
		return "", ErrDuplicate
	}
	return id, err
}

func (r *subscriptionRepository) GetByID(ctx context.Context, id string) (*models.Subscription, error) {
	sub, err := r.subs.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSubscriptionNotFound
	}
	return sub, err
}

func (r *subscriptionRepository) LatestByUser(ctx context.Context, userID string) (*models.Subscription, error) {
	sub, err := r.subs.FindOne(ctx, filter.Eq(models.FieldUserID, userID),
		store.Sort{Field: models.FieldCreatedAt, Desc: true})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSubscriptionNotFound
	}
	return sub, err
}

func (r *subscriptionRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	return r.subs.Count(ctx, filter.Gte(models.FieldCreatedAt, since))
}
