package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"event-registry/internal/model"
	"event-registry/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	StreamKey          = "registry:notifications"
	ConsumerGroupName  = "notification-workers"
	ConsumerNamePrefix = "worker"

	payloadField = "notification"
	batchSize    = 10
)

// RedisStreamQueueConfig tunes the stream queue; zero fields take the defaults.
type RedisStreamQueueConfig struct {
	StreamKey          string
	StreamMaxLen       int64         // approximate MAXLEN applied on every XADD
	ClaimMinIdleTime   time.Duration // pending entries idle this long are reclaimed with XAUTOCLAIM
	MaxRetryCount      int           // entries delivered this often are dropped as poison
	ReadGroupBlockTime time.Duration
}

func (c *RedisStreamQueueConfig) withDefaults() RedisStreamQueueConfig {
	out := RedisStreamQueueConfig{
		StreamKey:          StreamKey,
		StreamMaxLen:       100_000,
		ClaimMinIdleTime:   5 * time.Second,
		MaxRetryCount:      5,
		ReadGroupBlockTime: 2 * time.Second,
	}
	if c == nil {
		return out
	}
	if c.StreamKey != "" {
		out.StreamKey = c.StreamKey
	}
	if c.StreamMaxLen > 0 {
		out.StreamMaxLen = c.StreamMaxLen
	}
	if c.ClaimMinIdleTime > 0 {
		out.ClaimMinIdleTime = c.ClaimMinIdleTime
	}
	if c.MaxRetryCount > 0 {
		out.MaxRetryCount = c.MaxRetryCount
	}
	if c.ReadGroupBlockTime > 0 {
		out.ReadGroupBlockTime = c.ReadGroupBlockTime
	}
	return out
}

// RedisStreamNotificationQueue fans notifications through a Redis stream with a
// single consumer group, so several registry processes share one feed.
type RedisStreamNotificationQueue struct {
	client   *redis.Client
	group    string
	consumer string
	cfg      RedisStreamQueueConfig
	log      *zap.Logger
}

// NewRedisStreamNotificationQueue creates the consumer group if needed. An empty
// consumerID gets a random one; cfg may be nil.
func NewRedisStreamNotificationQueue(client *redis.Client, consumerID string, cfg *RedisStreamQueueConfig) (NotificationQueue, error) {
	if consumerID == "" {
		consumerID = uuid.New().String()
	}
	q := &RedisStreamNotificationQueue{
		client:   client,
		group:    ConsumerGroupName,
		consumer: fmt.Sprintf("%s:%s", ConsumerNamePrefix, consumerID),
		cfg:      cfg.withDefaults(),
	}
	q.log = logger.WithComponent("mq").With(zap.String("stream", q.cfg.StreamKey), zap.String("consumer", q.consumer))

	err := client.XGroupCreateMkStream(context.Background(), q.cfg.StreamKey, q.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("ensure consumer group: %w", err)
	}
	return q, nil
}

func (q *RedisStreamNotificationQueue) Publish(ctx context.Context, n *model.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.cfg.StreamKey,
		MaxLen: q.cfg.StreamMaxLen,
		Approx: true,
		Values: map[string]interface{}{payloadField: string(payload)},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd: %w", err)
	}
	return nil
}

// Subscribe starts a reader for new entries and a reclaimer for stale pending
// ones. The returned channel closes after both have stopped.
func (q *RedisStreamNotificationQueue) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)
	go func() {
		defer close(out)
		reclaimed := make(chan struct{})
		go func() {
			defer close(reclaimed)
			q.reclaimLoop(ctx, out)
		}()
		q.readLoop(ctx, out)
		<-reclaimed
	}()
	return out, nil
}

// readLoop only asks for never-delivered entries (">"); anything this consumer
// already holds stays pending until reclaimLoop takes it back.
func (q *RedisStreamNotificationQueue) readLoop(ctx context.Context, out chan<- Delivery) {
	for ctx.Err() == nil {
		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.group,
			Consumer: q.consumer,
			Streams:  []string{q.cfg.StreamKey, ">"},
			Count:    batchSize,
			Block:    q.cfg.ReadGroupBlockTime,
		}).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			q.log.Error("XReadGroup failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			if !q.forward(ctx, out, stream.Messages, false) {
				return
			}
		}
	}
}

func (q *RedisStreamNotificationQueue) reclaimLoop(ctx context.Context, out chan<- Delivery) {
	ticker := time.NewTicker(q.cfg.ClaimMinIdleTime)
	defer ticker.Stop()
	cursor := "0-0"

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		claimed, next, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   q.cfg.StreamKey,
			Group:    q.group,
			Consumer: q.consumer,
			MinIdle:  q.cfg.ClaimMinIdleTime,
			Start:    cursor,
			Count:    batchSize,
		}).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			if ctx.Err() == nil {
				q.log.Error("XAutoClaim failed", zap.Error(err))
			}
			continue
		}
		if next == "" {
			next = "0-0"
		}
		cursor = next

		if !q.forward(ctx, out, claimed, true) {
			return
		}
	}
}

// forward decodes and hands entries to out. Reclaimed entries are first
// checked against the retry budget. It returns false once ctx is done.
func (q *RedisStreamNotificationQueue) forward(ctx context.Context, out chan<- Delivery, msgs []redis.XMessage, reclaimed bool) bool {
	for _, msg := range msgs {
		if reclaimed && q.exhausted(ctx, msg.ID) {
			continue
		}
		d, ok := q.decode(ctx, msg)
		if !ok {
			continue
		}
		select {
		case out <- d:
		case <-ctx.Done():
			return false
		}
	}
	return true
}

// exhausted acks and reports entries whose delivery count reached MaxRetryCount.
func (q *RedisStreamNotificationQueue) exhausted(ctx context.Context, id string) bool {
	pending, err := q.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: q.cfg.StreamKey,
		Group:  q.group,
		Start:  id,
		End:    id,
		Count:  1,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		q.log.Warn("XPending failed, delivering anyway", zap.String("message_id", id), zap.Error(err))
		return false
	}
	if len(pending) == 0 || int(pending[0].RetryCount) < q.cfg.MaxRetryCount {
		return false
	}

	q.log.Warn("dropping notification after retries",
		zap.String("message_id", id),
		zap.Int64("retries", pending[0].RetryCount),
		zap.Int("max_retries", q.cfg.MaxRetryCount),
	)
	q.ack(ctx, id)
	return true
}

// decode turns an entry into a Delivery bound to its id; undecodable entries are acked away.
func (q *RedisStreamNotificationQueue) decode(ctx context.Context, msg redis.XMessage) (Delivery, bool) {
	var n model.Notification
	payload, ok := msg.Values[payloadField].(string)
	if !ok {
		q.log.Warn("entry without payload", zap.String("message_id", msg.ID))
		q.ack(ctx, msg.ID)
		return Delivery{}, false
	}
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		q.log.Warn("undecodable notification", zap.String("message_id", msg.ID), zap.Error(err))
		q.ack(ctx, msg.ID)
		return Delivery{}, false
	}

	id := msg.ID
	return Delivery{
		Data: &n,
		Ack:  func() { q.ack(ctx, id) },
		Nack: func(requeue bool) {
			if requeue {
				// stays in the PEL until reclaimLoop picks it up
				q.log.Info("notification requeued", zap.String("message_id", id), zap.Duration("claim_min_idle", q.cfg.ClaimMinIdleTime))
				return
			}
			q.ack(ctx, id)
		},
	}, true
}

func (q *RedisStreamNotificationQueue) ack(ctx context.Context, id string) {
	if err := q.client.XAck(ctx, q.cfg.StreamKey, q.group, id).Err(); err != nil {
		q.log.Error("XAck failed", zap.String("message_id", id), zap.Error(err))
	}
}
