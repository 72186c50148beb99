package repository

import (
	"context"
	"time"

	"storyfeed-backend/internal/features/guess/models"
	"storyfeed-backend/internal/platform/store"
	"storyfeed-backend/internal/platform/store/filter"
)

const Collection = "guesses"

type GuessRepository interface {
	Create(ctx context.Context, record *models.GuessRecord) (string, error)
	// CountBetween counts records of ip with from <= created_at <= to.
	CountBetween(ctx context.Context, ip string, from, to time.Time) (int64, error)
	DeleteByIP(ctx context.Context, ip string) (int64, error)
}

type guessRepository struct {
	guesses *store.Collection[models.GuessRecord]
}

func NewGuessRepository(s store.Store) GuessRepository {
	return &guessRepository{guesses: store.NewCollection[models.GuessRecord](s, Collection)}
}

func (r *guessRepository) Create(ctx context.Context, record *models.GuessRecord) (string, error) {
	return r.guesses.Insert(ctx, record)
}

func (r *guessRepository) CountBetween(ctx context.Context, ip string, from, to time.Time) (int64, error) {
	return r.guesses.Count(ctx, filter.All(
		filter.Eq(models.FieldIP, ip),
		filter.Gte(models.FieldCreatedAt, from),
		filter.Lte(models.FieldCreatedAt, to),
	))
}

func (r *guessRepository) DeleteByIP(ctx context.Context, ip string) (int64, error) {
	return r.guesses.DeleteWhere(ctx, filter.Eq(models.FieldIP, ip))
}
