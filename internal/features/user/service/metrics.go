package service

import (
	"context"
	"math"

	apperrors "storyfeed-backend/internal/common/errors"
	"storyfeed-backend/internal/common/timeutil"
	"storyfeed-backend/internal/features/user/models"
	"storyfeed-backend/internal/platform/store/filter"
)

// CountNewUsers counts accounts created since the start of the current UTC month.
func (s *userService) CountNewUsers(ctx context.Context) (int64, error) {
	n, err := s.repo.Count(ctx, filter.Gte(models.FieldCreatedAt, timeutil.MonthStart(s.now())))
	if err != nil {
		return 0, apperrors.NewInternalError("count new users", err)
	}
	return n, nil
}

// CountActiveUsers counts accounts seen since the start of the current UTC month.
func (s *userService) CountActiveUsers(ctx context.Context) (int64, error) {
	n, err := s.repo.Count(ctx, filter.Gte(models.FieldLastLoginAt, timeutil.MonthStart(s.now())))
	if err != nil {
		return 0, apperrors.NewInternalError("count active users", err)
	}
	return n, nil
}

// RetentionRate is users active this month over users created before it, as a
// percentage rounded to two decimals. Zero when nobody predates the month.
func (s *userService) RetentionRate(ctx context.Context) (float64, error) {
	existing, err := s.repo.Count(ctx, filter.Lt(models.FieldCreatedAt, timeutil.MonthStart(s.now())))
	if err != nil {
		return 0, apperrors.NewInternalError("count existing users", err)
	}
	if existing == 0 {
		return 0, nil
	}

	active, err := s.CountActiveUsers(ctx)
	if err != nil {
		return 0, err
	}
	return math.Round(float64(active)/float64(existing)*10000) / 100, nil
}

func (s *userService) GetStatistic(ctx context.Context) (*models.PlatformStatistic, error) {
	newUsers, err := s.CountNewUsers(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.CountActiveUsers(ctx)
	if err != nil {
		return nil, err
	}
	retention, err := s.RetentionRate(ctx)
	if err != nil {
		return nil, err
	}

	out := &models.PlatformStatistic{
		NewUsers:      newUsers,
		ActiveUsers:   active,
		RetentionRate: retention,
	}
	if s.shares != nil {
		if out.SocialShare, err = s.shares.TotalShares(ctx); err != nil {
			return nil, apperrors.NewInternalError("total social shares", err)
		}
	}
	if s.subscriptions != nil {
		if out.SubscriptionsThisMonth, err = s.subscriptions.CountMonthlySubscriptions(ctx); err != nil {
			return nil, apperrors.NewInternalError("count monthly subscriptions", err)
		}
	}
	return out, nil
}
