package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-intake/internal/service"
)

const defaultPublishTimeout = 5 * time.Second

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

type outboundMessage struct {
	channel string
	payload []byte
}

// PublishWorker moves event delivery off the request path. It satisfies
// service.Publisher; Publish only enqueues and a single goroutine drains the
// queue into the target publisher.
type PublishWorker struct {
	target  service.Publisher
	logger  *zap.Logger
	timeout time.Duration

	queue chan outboundMessage
	wg    sync.WaitGroup
	once  sync.Once
}

// NewPublishWorker starts a worker with the given queue capacity.
func NewPublishWorker(target service.Publisher, logger *zap.Logger, capacity int) *PublishWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if capacity <= 0 {
		capacity = 64
	}
	w := &PublishWorker{
		target:  target,
		logger:  logger,
		timeout: defaultPublishTimeout,
		queue:   make(chan outboundMessage, capacity),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

// Publish enqueues a message. A full queue drops the message with a warning.
func (w *PublishWorker) Publish(_ context.Context, channel string, payload []byte) error {
	select {
	case w.queue <- outboundMessage{channel: channel, payload: payload}:
	default:
		w.logger.Warn("event queue full; dropping event", zap.String("channel", channel))
	}
	return nil
}

// Stop drains pending messages and waits for the worker to exit. Publish
// must not be called after Stop.
func (w *PublishWorker) Stop() {
	w.once.Do(func() {
		close(w.queue)
	})
	w.wg.Wait()
}

func (w *PublishWorker) run() {
	defer w.wg.Done()
	for msg := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		if err := w.target.Publish(ctx, msg.channel, msg.payload); err != nil {
			w.logger.Warn("event publish failed", zap.String("channel", msg.channel), zap.Error(err))
		}
		cancel()
	}
}
