package worker

import (
	"context"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	apperrors "storyfeed-backend/internal/common/errors"
	"storyfeed-backend/internal/common/logger"
	"storyfeed-backend/internal/features/subscription/models"
	"storyfeed-backend/internal/features/subscription/service"
	"storyfeed-backend/internal/platform/redis"
)

type Config struct {
	Stream   string
	Group    string
	Consumer string
	// Block bounds one XREADGROUP call; zero means 5s.
	Block time.Duration
	// RetryInterval is how often unacknowledged entries are re-read; zero means 30s.
	RetryInterval time.Duration
}

// batchSize caps entries per XREADGROUP call.
const batchSize = 10

// PaymentStreamWorker consumes payment gateway events from a Redis stream
// through a consumer group and turns completed checkouts into subscriptions.
type PaymentStreamWorker struct {
	rdb     *redis.Client
	service service.SubscriptionService
	cfg     Config
}

func NewPaymentStreamWorker(rdb *redis.Client, service service.SubscriptionService, cfg Config) *PaymentStreamWorker {
	if cfg.Block <= 0 {
		cfg.Block = 5 * time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 30 * time.Second
	}
	return &PaymentStreamWorker{
		rdb:     rdb,
		service: service,
		cfg:     cfg,
	}
}

// Start blocks until ctx is cancelled.
func (w *PaymentStreamWorker) Start(ctx context.Context) {
	// Ensure consumer group exists
	err := w.rdb.XGroupCreateMkStream(ctx, w.cfg.Stream, w.cfg.Group, "0").Err()
	if err != nil && !redis.IsBusyGroup(err) {
		logger.Error().Err(err).Str("stream", w.cfg.Stream).Msg("Error creating consumer group")
	}

	logger.Info().
		Str("stream", w.cfg.Stream).
		Str("group", w.cfg.Group).
		Str("consumer", w.cfg.Consumer).
		Msg("Starting payment stream worker")

	// Entries delivered to this consumer but never acknowledged come first,
	// then again on every RetryInterval.
	w.drainPending(ctx)
	nextRetry := time.Now().Add(w.cfg.RetryInterval)

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Stopping payment stream worker")
			return
		default:
			if !time.Now().Before(nextRetry) {
				w.drainPending(ctx)
				nextRetry = time.Now().Add(w.cfg.RetryInterval)
			}
			if !w.read(ctx, ">") {
				// backoff on error
				select {
				case <-ctx.Done():
				case <-time.After(time.Second):
				}
			}
		}
	}
}

// read waits for one batch of new entries and reports false on a read error.
func (w *PaymentStreamWorker) read(ctx context.Context, id string) bool {
	_, err := w.readBatch(ctx, id, w.cfg.Block)
	if err != nil {
		logger.Error().Err(err).Str("stream", w.cfg.Stream).Msg("Error reading from stream")
		return false
	}
	return true
}

// drainPending walks this consumer's pending list page by page. Entries
// that fail again stay pending until the next sweep.
func (w *PaymentStreamWorker) drainPending(ctx context.Context) {
	after := "0"
	for ctx.Err() == nil {
		// Block is ignored for history reads; -1 omits it.
		last, err := w.readBatch(ctx, after, -1)
		if err != nil {
			logger.Error().Err(err).Str("stream", w.cfg.Stream).Msg("Error reading pending entries")
			return
		}
		if last == "" {
			return
		}
		after = last
	}
}

// readBatch processes up to batchSize entries after id and returns the last
// entry id seen, or "" when there were none.
func (w *PaymentStreamWorker) readBatch(ctx context.Context, id string, block time.Duration) (string, error) {
	entries, err := w.rdb.XReadGroup(ctx, &goredis.XReadGroupArgs{
		Group:    w.cfg.Group,
		Consumer: w.cfg.Consumer,
		Streams:  []string{w.cfg.Stream, id},
		Count:    batchSize,
		Block:    block,
	}).Result()
	if err != nil {
		if redis.IsNil(err) || ctx.Err() != nil {
			return "", nil
		}
		return "", err
	}

	var last string
	for _, stream := range entries {
		for _, msg := range stream.Messages {
			last = msg.ID
			if !w.processMessage(ctx, msg.ID, msg.Values) {
				continue
			}
			if err := w.rdb.XAck(ctx, w.cfg.Stream, w.cfg.Group, msg.ID).Err(); err != nil {
				logger.Error().Err(err).Str("message_id", msg.ID).Msg("Error acknowledging message")
			}
		}
	}
	return last, nil
}

// processMessage reports whether the message can be acknowledged. Only
// internal failures leave it pending for a retry.
func (w *PaymentStreamWorker) processMessage(ctx context.Context, id string, values map[string]interface{}) bool {
	ev := parseEvent(values)
	if ev.Type == "" {
		logger.Warn().Str("message_id", id).Msg("Payment event without type")
		return true
	}

	sub, created, err := w.service.HandlePaymentEvent(ctx, ev)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodeInternal) {
			logger.Error().Err(err).Str("message_id", id).Str("tx_id", ev.TxID).Msg("Error processing payment event")
			return false
		}
		logger.Warn().Err(err).Str("message_id", id).Msg("Dropping invalid payment event")
		return true
	}
	if created {
		logger.Info().
			Str("message_id", id).
			Str("user_id", sub.UserID).
			Int("level", sub.Level).
			Msg("Processed payment event")
	}
	return true
}

func parseEvent(values map[string]interface{}) models.PaymentEvent {
	str := func(key string) string {
		s, _ := values[key].(string)
		return s
	}
	unix := func(key string) int64 {
		n, _ := strconv.ParseInt(str(key), 10, 64)
		return n
	}
	return models.PaymentEvent{
		Type:      str("type"),
		UserID:    str("user_id"),
		PriceID:   str("price_id"),
		TxID:      str("tx_id"),
		Status:    str("status"),
		StartDate: unix("start_date"),
		EndDate:   unix("end_date"),
	}
}
