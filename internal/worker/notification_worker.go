package worker

import (
	"context"

	"event-registry/internal/model"
	"event-registry/internal/queue"
	"event-registry/pkg/logger"

	"go.uber.org/zap"
)

// Sink receives every notification the worker pulls off the queue.
type Sink interface {
	Handle(ctx context.Context, n *model.Notification) error
}

// LogSink writes each notification as a structured log line.
type LogSink struct{}

func (LogSink) Handle(ctx context.Context, n *model.Notification) error {
	logger.WithComponent("worker").Info("registry notification",
		zap.String("id", n.ID),
		zap.String("kind", string(n.Kind)),
		zap.Uint64("event_id", n.EventID),
		zap.String("address", n.Address.String()),
		zap.Int64("timestamp", n.Timestamp),
	)
	return nil
}

type NotificationWorker interface {
	// Start subscribes to the queue and returns once the consume loop is running.
	Start(ctx context.Context) error
	// Done is closed when the consume loop has exited.
	Done() <-chan struct{}
}

type NotificationWorkerImpl struct {
	sink  Sink
	queue queue.NotificationQueue
	done  chan struct{}
}

func NewNotificationWorker(sink Sink, queue queue.NotificationQueue) NotificationWorker {
	return &NotificationWorkerImpl{
		sink:  sink,
		queue: queue,
		done:  make(chan struct{}),
	}
}

func (w *NotificationWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		defer close(w.done)
		for msg := range msgs {
			if err := w.sink.Handle(ctx, msg.Data); err != nil {
				logger.WithComponent("worker").Warn("notification handling failed, requeueing",
					zap.String("id", msg.Data.ID),
					zap.Error(err),
				)
				msg.Nack(true)
				continue
			}
			msg.Ack()
		}
	}()
	return nil
}

func (w *NotificationWorkerImpl) Done() <-chan struct{} {
	return w.done
}
