package service

import (
	"context"
	"strings"

	apperrors "storyfeed-backend/internal/common/errors"
	"storyfeed-backend/internal/common/logger"
	"storyfeed-backend/internal/common/timeutil"
	"storyfeed-backend/internal/common/validation"
	"storyfeed-backend/internal/features/social/models"
	"storyfeed-backend/internal/features/social/repository"
)

type SocialService interface {
	// Share records one share and returns the platform's new total.
	Share(ctx context.Context, platform string) (int64, error)
	TotalShares(ctx context.Context) (int64, error)
}

type socialService struct {
	repo repository.ShareRepository
	now  timeutil.Clock
}

func NewSocialService(repo repository.ShareRepository, clock timeutil.Clock) SocialService {
	if clock == nil {
		clock = timeutil.Now
	}
	return &socialService{repo: repo, now: clock}
}

func (s *socialService) Share(ctx context.Context, platform string) (int64, error) {
	platform = strings.ToLower(strings.TrimSpace(platform))
	if err := validation.ValidateText(models.FieldPlatform, platform, validation.MaxNameLength); err != nil {
		return 0, err
	}

	shares, err := s.repo.Increment(ctx, platform, timeutil.NewTimestamp(s.now()))
	if err != nil {
		return 0, apperrors.NewInternalError("share on social media", err)
	}
	logger.Ctx(ctx).Debug().Str("platform", platform).Int64("count", shares.ShareCount).Msg("Social share recorded")
	return shares.ShareCount, nil
}

func (s *socialService) TotalShares(ctx context.Context) (int64, error) {
	platforms, err := s.repo.List(ctx)
	if err != nil {
		return 0, apperrors.NewInternalError("count social shares", err)
	}
	var total int64
	for _, p := range platforms {
		total += p.ShareCount
	}
	return total, nil
}
