package worker

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "storyfeed-backend/internal/common/errors"
	"storyfeed-backend/internal/features/subscription/models"
	"storyfeed-backend/internal/features/subscription/repository"
	"storyfeed-backend/internal/features/subscription/service"
	"storyfeed-backend/internal/platform/redis"
	"storyfeed-backend/internal/platform/store"
)

func TestPaymentStreamWorker(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { rdb.Close() })

	svc := service.NewSubscriptionService(
		repository.NewSubscriptionRepository(store.NewMemoryStore()),
		map[string]int{"price_pro": 3},
		nil,
	)
	cfg := Config{Stream: "payments:events", Group: "test", Consumer: "w1", Block: 20 * time.Millisecond}
	w := NewPaymentStreamWorker(rdb, svc, cfg)

	ctx := context.Background()
	publish := func(values map[string]interface{}) {
		require.NoError(t, rdb.XAdd(ctx, &goredis.XAddArgs{Stream: cfg.Stream, Values: values}).Err())
	}
	// published before the worker starts; the group reads from the stream head
	publish(map[string]interface{}{"type": "checkout.completed", "user_id": "u1", "price_id": "price_pro", "tx_id": "cs_1"})

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		w.Start(runCtx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	publish(map[string]interface{}{"type": "checkout.completed", "user_id": "u1", "price_id": "price_pro", "tx_id": "cs_1"})
	publish(map[string]interface{}{"type": "checkout.completed", "user_id": "u2", "tx_id": "cs_2", "start_date": "1710460800"})
	publish(map[string]interface{}{"user_id": "u3"})

	require.Eventually(t, func() bool {
		_, err1 := svc.GetByUser(ctx, "u1")
		_, err2 := svc.GetByUser(ctx, "u2")
		return err1 == nil && err2 == nil
	}, 2*time.Second, 20*time.Millisecond)

	first, err := svc.GetByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, first.Level)

	second, err := svc.GetByUser(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 1, second.Level)
	assert.Equal(t, int64(1710460800), second.StartDate.Unix())

	n, err := svc.CountMonthlySubscriptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

// flakyService answers the first `failures` events with an internal error.
type flakyService struct {
	service.SubscriptionService
	failures int32
	calls    atomic.Int32
}

func (f *flakyService) HandlePaymentEvent(ctx context.Context, ev models.PaymentEvent) (*models.Subscription, bool, error) {
	if f.calls.Add(1) <= f.failures {
		return nil, false, apperrors.NewInternalError("create subscription", errors.New("store unavailable"))
	}
	return f.SubscriptionService.HandlePaymentEvent(ctx, ev)
}

func TestPaymentStreamWorkerRetriesFailedEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { rdb.Close() })

	svc := &flakyService{
		SubscriptionService: service.NewSubscriptionService(
			repository.NewSubscriptionRepository(store.NewMemoryStore()), nil, nil),
		failures: 1,
	}
	cfg := Config{
		Stream:        "payments:events",
		Group:         "test",
		Consumer:      "w1",
		Block:         20 * time.Millisecond,
		RetryInterval: 50 * time.Millisecond,
	}
	w := NewPaymentStreamWorker(rdb, svc, cfg)

	ctx := context.Background()
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		w.Start(runCtx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.NoError(t, rdb.XAdd(ctx, &goredis.XAddArgs{
		Stream: cfg.Stream,
		Values: map[string]interface{}{"type": "checkout.completed", "user_id": "u1", "tx_id": "cs_retry"},
	}).Err())

	require.Eventually(t, func() bool {
		_, err := svc.GetByUser(ctx, "u1")
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	assert.GreaterOrEqual(t, svc.calls.Load(), int32(2))

	require.Eventually(t, func() bool {
		pending, err := rdb.XPending(ctx, cfg.Stream, cfg.Group).Result()
		return err == nil && pending.Count == 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestDrainPendingPagesPastOneBatch(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { rdb.Close() })

	inner := service.NewSubscriptionService(repository.NewSubscriptionRepository(store.NewMemoryStore()), nil, nil)
	svc := &flakyService{SubscriptionService: inner, failures: 2 * batchSize}
	cfg := Config{Stream: "payments:events", Group: "test", Consumer: "w1"}
	w := NewPaymentStreamWorker(rdb, svc, cfg)

	ctx := context.Background()
	require.NoError(t, rdb.XGroupCreateMkStream(ctx, cfg.Stream, cfg.Group, "0").Err())
	total := 2*batchSize + 5
	for i := 0; i < total; i++ {
		require.NoError(t, rdb.XAdd(ctx, &goredis.XAddArgs{
			Stream: cfg.Stream,
			Values: map[string]interface{}{"type": "checkout.completed", "user_id": "u" + strconv.Itoa(i), "tx_id": "cs_" + strconv.Itoa(i)},
		}).Err())
	}

	// first delivery: the first two batches fail and stay pending
	for {
		last, err := w.readBatch(ctx, ">", -1)
		require.NoError(t, err)
		if last == "" {
			break
		}
	}
	pending, err := rdb.XPending(ctx, cfg.Stream, cfg.Group).Result()
	require.NoError(t, err)
	require.Equal(t, int64(2*batchSize), pending.Count)

	w.drainPending(ctx)

	pending, err = rdb.XPending(ctx, cfg.Stream, cfg.Group).Result()
	require.NoError(t, err)
	assert.Zero(t, pending.Count)
	n, err := inner.CountMonthlySubscriptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(total), n)
}
