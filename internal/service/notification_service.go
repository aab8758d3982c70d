package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/support-intake/internal/events"
)

// Publisher forwards serialized events to an external channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// NotificationService fans ticket events out to an external publisher.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  Publisher
	channel    string
	logger     *zap.Logger
}

// NewNotificationService creates the service. publisher may be nil, in which
// case events are only logged.
func NewNotificationService(dispatcher events.Dispatcher, publisher Publisher, channel string, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		publisher:  publisher,
		channel:    channel,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return n.forward(ctx, event)
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketStatusChanged", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return n.forward(ctx, event)
}

func (n *NotificationService) forward(ctx context.Context, event events.Event) error {
	if n.publisher == nil {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	if err := n.publisher.Publish(ctx, n.channel, body); err != nil {
		return fmt.Errorf("publish %s event to %s: %w", event.Type, n.channel, err)
	}
	return nil
}
