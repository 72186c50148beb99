package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "storyfeed-backend/internal/common/errors"
	"storyfeed-backend/internal/common/logger"
	"storyfeed-backend/internal/common/timeutil"
	"storyfeed-backend/internal/features/subscription/models"
	"storyfeed-backend/internal/features/subscription/repository"
)

// defaultPeriod is used when a subscription arrives without an end date.
const defaultPeriod = 30 * 24 * time.Hour

type SubscriptionService interface {
	Create(ctx context.Context, userID string, input models.CreateSubscriptionRequest) (*models.Subscription, error)
	GetByUser(ctx context.Context, userID string) (*models.Subscription, error)
	CountMonthlySubscriptions(ctx context.Context) (int64, error)
	// HandlePaymentEvent records the subscription paid for by ev. Replays of
	// the same tx_id return (nil, false, nil).
	HandlePaymentEvent(ctx context.Context, ev models.PaymentEvent) (*models.Subscription, bool, error)
	LevelForPrice(priceID string) int
}

type subscriptionService struct {
	repo        repository.SubscriptionRepository
	priceLevels map[string]int
	now         timeutil.Clock
}

func NewSubscriptionService(repo repository.SubscriptionRepository, priceLevels map[string]int, clock timeutil.Clock) SubscriptionService {
	if clock == nil {
		clock = timeutil.Now
	}
	if priceLevels == nil {
		priceLevels = map[string]int{}
	}
	return &subscriptionService{repo: repo, priceLevels: priceLevels, now: clock}
}

// subscriptionID derives the record id from the transaction so a payment is
// stored at most once, whichever path sees it first.
func subscriptionID(txID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("subscription:"+txID)).String()
}

func (s *subscriptionService) Create(ctx context.Context, userID string, input models.CreateSubscriptionRequest) (*models.Subscription, error) {
	if input.Level < models.MinLevel || input.Level > models.MaxLevel {
		return nil, apperrors.NewValidationError("level", "must be between 1 and 3")
	}
	if strings.TrimSpace(input.TxID) == "" {
		return nil, apperrors.NewValidationError("tx_id", "cannot be empty")
	}

	sub, err := s.create(ctx, userID, input.Level, input.TxID, input.Status, input.StartDate, input.EndDate)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperrors.NewConflictError("subscription", "transaction already recorded").WithDetail("tx_id", input.TxID)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("create subscription", err)
	}
	return sub, nil
}

func (s *subscriptionService) create(ctx context.Context, userID string, level int, txID, status string, start, end int64) (*models.Subscription, error) {
	now := s.now()
	startAt := now
	if start > 0 {
		startAt = time.Unix(start, 0)
	}
	endAt := startAt.Add(defaultPeriod)
	if end > 0 {
		endAt = time.Unix(end, 0)
	}
	if status == "" {
		status = models.StatusActive
	}

	sub := &models.Subscription{
		ID:        subscriptionID(txID),
		UserID:    userID,
		Level:     level,
		Status:    status,
		StartDate: timeutil.NewTimestamp(startAt),
		EndDate:   timeutil.NewTimestamp(endAt),
		TxID:      txID,
		CreatedAt: timeutil.NewTimestamp(now),
	}
	if _, err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}

	logger.Info().
		Str("user_id", userID).
		Str("tx_id", txID).
		Int("level", level).
		Msg("Subscription created")
	return sub, nil
}

func (s *subscriptionService) GetByUser(ctx context.Context, userID string) (*models.Subscription, error) {
	sub, err := s.repo.LatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return nil, apperrors.NewNotFoundError("subscription", userID)
		}
		return nil, apperrors.NewInternalError("get subscription", err)
	}
	return sub, nil
}

func (s *subscriptionService) CountMonthlySubscriptions(ctx context.Context) (int64, error) {
	n, err := s.repo.CountCreatedSince(ctx, timeutil.MonthStart(s.now()))
	if err != nil {
		return 0, apperrors.NewInternalError("count subscriptions", err)
	}
	return n, nil
}

func (s *subscriptionService) LevelForPrice(priceID string) int {
	if level, ok := s.priceLevels[priceID]; ok && level >= models.MinLevel && level <= models.MaxLevel {
		return level
	}
	return models.DefaultLevel
}

func (s *subscriptionService) HandlePaymentEvent(ctx context.Context, ev models.PaymentEvent) (*models.Subscription, bool, error) {
	if ev.Type != models.EventCheckoutCompleted {
		return nil, false, nil
	}
	if ev.UserID == "" || ev.TxID == "" {
		return nil, false, apperrors.NewValidationError("event", "user_id and tx_id are required").
			WithDetail("tx_id", ev.TxID)
	}

	sub, err := s.create(ctx, ev.UserID, s.LevelForPrice(ev.PriceID), ev.TxID, ev.Status, ev.StartDate, ev.EndDate)
	if errors.Is(err, repository.ErrDuplicate) {
		logger.Debug().Str("tx_id", ev.TxID).Msg("Payment event already processed")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperrors.NewInternalError("handle payment event", err)
	}
	return sub, true, nil
}
