package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"event-registry/internal/model"
	"event-registry/internal/queue"
	"event-registry/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu       sync.Mutex
	failures int
	handled  chan *model.Notification
}

func (s *recordingSink) Handle(ctx context.Context, n *model.Notification) error {
	s.mu.Lock()
	if s.failures > 0 {
		s.failures--
		s.mu.Unlock()
		return errors.New("sink unavailable")
	}
	s.mu.Unlock()
	s.handled <- n
	return nil
}

func TestNotificationWorker_DeliversToSink(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	q := queue.NewNotificationQueue(10)
	sink := &recordingSink{handled: make(chan *model.Notification, 1)}

	w := worker.NewNotificationWorker(sink, q)
	require.NoError(t, w.Start(ctx))

	n := &model.Notification{ID: "n-1", Kind: model.NotificationRegistered, EventID: 1}
	require.NoError(t, q.Publish(ctx, n))

	select {
	case got := <-sink.handled:
		assert.Equal(t, n, got)
	case <-time.After(time.Second):
		t.Fatal("worker did not deliver the notification in time")
	}
}

func TestNotificationWorker_RequeuesOnSinkFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	q := queue.NewNotificationQueue(10)
	sink := &recordingSink{failures: 2, handled: make(chan *model.Notification, 1)}

	w := worker.NewNotificationWorker(sink, q)
	require.NoError(t, w.Start(ctx))

	require.NoError(t, q.Publish(ctx, &model.Notification{ID: "n-2", Kind: model.NotificationEventCreated, EventID: 7}))

	select {
	case got := <-sink.handled:
		assert.Equal(t, "n-2", got.ID)
	case <-time.After(time.Second):
		t.Fatal("notification was not retried after sink failures")
	}
}

func TestNotificationWorker_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	w := worker.NewNotificationWorker(worker.LogSink{}, queue.NewNotificationQueue(1))
	require.NoError(t, w.Start(ctx))

	cancel()

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}
