package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type capturePublisher struct {
	mu       sync.Mutex
	channels []string
	payloads []string
	err      error
}

func (c *capturePublisher) Publish(_ context.Context, channel string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channels = append(c.channels, channel)
	c.payloads = append(c.payloads, string(payload))
	return c.err
}

func TestPublishWorker_DeliversInOrderBeforeStopReturns(t *testing.T) {
	target := &capturePublisher{}
	w := NewPublishWorker(target, zap.NewNop(), 8)

	for _, body := range []string{"one", "two", "three"} {
		assert.NoError(t, w.Publish(context.Background(), "support.tickets", []byte(body)))
	}
	w.Stop()

	assert.Equal(t, []string{"one", "two", "three"}, target.payloads)
	assert.Equal(t, []string{"support.tickets", "support.tickets", "support.tickets"}, target.channels)
}

func TestPublishWorker_TargetErrorsAreSwallowed(t *testing.T) {
	target := &capturePublisher{err: errors.New("redis down")}
	w := NewPublishWorker(target, nil, 1)

	assert.NoError(t, w.Publish(context.Background(), "c", []byte("x")))
	w.Stop()
	w.Stop()

	assert.Len(t, target.payloads, 1)
}

func TestStartNotificationWorker_NilIsNoop(t *testing.T) {
	assert.NotPanics(t, func() { StartNotificationWorker(nil) })
}
