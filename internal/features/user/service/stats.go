package service

import (
	"context"
	"sync"
	"sync/atomic"

	apperrors "storyfeed-backend/internal/common/errors"
	"storyfeed-backend/internal/common/logger"
	"storyfeed-backend/internal/features/access"
	"storyfeed-backend/internal/features/user/models"
	"storyfeed-backend/internal/platform/store/filter"
)

const (
	// MaxStatsWorkers ограничивает число параллельных запросов подсчёта
	MaxStatsWorkers = 5

	statsCacheKey = "user_stats"
)

type countQuery struct {
	name   string
	filter filter.Predicate
	dest   *int64
}

func (s *userService) GetUserStats(ctx context.Context, actor access.Identity) (*models.UserStats, error) {
	if !access.CanManageUsers(actor.Role, access.ActionStats, actor.UserID, "") {
		return nil, apperrors.NewForbiddenError("insufficient permissions to view user stats")
	}
	return s.AggregateUserStats(ctx)
}

// AggregateUserStats counts users per role concurrently. A failed count is
// logged and reported as zero; results are cached only when every count succeeded.
func (s *userService) AggregateUserStats(ctx context.Context) (*models.UserStats, error) {
	if s.cache != nil {
		var cached models.UserStats
		if err := s.cache.Get(ctx, statsCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	stats := &models.UserStats{}
	queries := []countQuery{
		{name: "total", dest: &stats.Total},
		{name: "admin", filter: filter.Eq(models.FieldRole, access.RoleAdmin), dest: &stats.Admin},
		{name: "student", filter: filter.Eq(models.FieldRole, access.RoleStudent), dest: &stats.Student},
		{name: "viewer", filter: filter.Eq(models.FieldRole, access.RoleViewer), dest: &stats.Viewer},
		{name: "contributor", filter: filter.Eq(models.FieldRole, access.RoleContributor), dest: &stats.Contributor},
	}

	failed := s.runCounts(ctx, queries)
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "user stats aggregation cancelled")
	}
	// Presence is not tracked; every account counts as online.
	stats.Online = stats.Total

	if failed == 0 && s.cache != nil && s.statsTTL > 0 {
		if err := s.cache.Set(ctx, statsCacheKey, stats, s.statsTTL); err != nil {
			logger.Warn().Err(err).Msg("Failed to cache user stats")
		}
	}
	return stats, nil
}

func (s *userService) runCounts(ctx context.Context, queries []countQuery) int {
	semaphore := make(chan struct{}, MaxStatsWorkers)
	var wg sync.WaitGroup
	var failed atomic.Int32

	for _, q := range queries {
		wg.Add(1)
		go func(q countQuery) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				failed.Add(1)
				return
			}

			n, err := s.repo.Count(ctx, q.filter)
			if err != nil {
				failed.Add(1)
				logger.Error().Err(err).Str("query", q.name).Msg("User stats query failed")
				return
			}
			*q.dest = n
		}(q)
	}

	wg.Wait()
	return int(failed.Load())
}
