package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"storyfeed-backend/internal/common/timeutil"
	"storyfeed-backend/internal/features/social/models"
	"storyfeed-backend/internal/platform/store"
)

const Collection = "social_shares"

type ShareRepository interface {
	// Increment adds one share for platform, creating its counter on first use.
	Increment(ctx context.Context, platform string, at timeutil.Timestamp) (*models.PlatformShares, error)
	List(ctx context.Context) ([]*models.PlatformShares, error)
}

type shareRepository struct {
	shares *store.Collection[models.PlatformShares]
}

func NewShareRepository(s store.Store) ShareRepository {
	return &shareRepository{shares: store.NewCollection[models.PlatformShares](s, Collection)}
}

// platformID gives every platform one fixed record so concurrent first
// shares collide on insert instead of creating two counters.
func platformID(platform string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("social:"+platform)).String()
}

func (r *shareRepository) Increment(ctx context.Context, platform string, at timeutil.Timestamp) (*models.PlatformShares, error) {
	id := platformID(platform)
	bump := func(p *models.PlatformShares) error {
		p.ShareCount++
		p.UpdatedAt = at
		return nil
	}

	shares, err := r.shares.Mutate(ctx, id, bump)
	if !errors.Is(err, store.ErrNotFound) {
		return shares, err
	}

	first := &models.PlatformShares{ID: id, Platform: platform, ShareCount: 1, CreatedAt: at, UpdatedAt: at}
	_, err = r.shares.Insert(ctx, first)
	if err == nil {
		return first, nil
	}
	if !errors.Is(err, store.ErrDuplicateID) {
		return nil, err
	}
	// lost the race to create the counter
	return r.shares.Mutate(ctx, id, bump)
}

func (r *shareRepository) List(ctx context.Context) ([]*models.PlatformShares, error) {
	return r.shares.Find(ctx, store.Query{Sort: []store.Sort{{Field: models.FieldPlatform}}})
}
