package service

import (
	"context"
	"net"
	"sync"
	"time"

	apperrors "storyfeed-backend/internal/common/errors"
	"storyfeed-backend/internal/common/logger"
	"storyfeed-backend/internal/common/timeutil"
	"storyfeed-backend/internal/features/guess/models"
	"storyfeed-backend/internal/features/guess/repository"
)

// DailyGuessLimit is the number of guesses an IP may make per UTC day.
const DailyGuessLimit = 2

type GuessService interface {
	RecordGuess(ctx context.Context, ip string) (*models.Quota, error)
	RemoveGuesses(ctx context.Context, ip string) (int64, error)
}

type guessService struct {
	repo repository.GuessRepository
	now  timeutil.Clock
	// mu serializes count-then-insert within this process.
	mu sync.Mutex
}

func NewGuessService(repo repository.GuessRepository, clock timeutil.Clock) GuessService {
	if clock == nil {
		clock = timeutil.Now
	}
	return &guessService{repo: repo, now: clock}
}

// RecordGuess admits at most DailyGuessLimit guesses per IP per UTC calendar
// day. A rejected guess writes nothing.
func (s *guessService) RecordGuess(ctx context.Context, ip string) (*models.Quota, error) {
	if net.ParseIP(ip) == nil {
		return nil, apperrors.NewValidationError("ip", "a valid client IP address is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	from, to := timeutil.DayBounds(now)
	used, err := s.repo.CountBetween(ctx, ip, from, to)
	if err != nil {
		return nil, apperrors.NewInternalError("count guesses", err)
	}
	if used >= DailyGuessLimit {
		logger.Ctx(ctx).Info().Str("ip", ip).Int64("used", used).Msg("Guess limit reached")
		return nil, apperrors.NewRateLimitError("guess", from.Add(24*time.Hour).Sub(now).Truncate(time.Second)).
			WithDetail("limit", DailyGuessLimit)
	}

	if _, err := s.repo.Create(ctx, &models.GuessRecord{IP: ip, CreatedAt: timeutil.NewTimestamp(now)}); err != nil {
		return nil, apperrors.NewInternalError("record guess", err)
	}
	used++
	return &models.Quota{Used: used, Limit: DailyGuessLimit, Remaining: DailyGuessLimit - used}, nil
}

func (s *guessService) RemoveGuesses(ctx context.Context, ip string) (int64, error) {
	if net.ParseIP(ip) == nil {
		return 0, apperrors.NewValidationError("ip_address", "must be an IP address")
	}
	n, err := s.repo.DeleteByIP(ctx, ip)
	if err != nil {
		return 0, apperrors.NewInternalError("remove guesses", err)
	}
	logger.Ctx(ctx).Info().Str("ip", ip).Int64("removed", n).Msg("Guesses removed")
	return n, nil
}
