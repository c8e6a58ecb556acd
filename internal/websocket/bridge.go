package websocket

import (
	"context"
	"encoding/json"

	"github.com/Mtank10/career-counselling-chat-app/internal/pkg/logger"
	"github.com/Mtank10/career-counselling-chat-app/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Bridge subscribes to the chat event bus and forwards each event to the
// owning user's websocket connections.
type Bridge struct {
	subscriber message.Subscriber
	hub        *Hub
	logger     logger.ILogger
}

func NewBridge(subscriber message.Subscriber, hub *Hub, log logger.ILogger) *Bridge {
	return &Bridge{
		subscriber: subscriber,
		hub:        hub,
		logger:     log,
	}
}

// Start subscribes to all chat topics. Consumers run until ctx is cancelled.
func (b *Bridge) Start(ctx context.Context) error {
	turnMessages, err := b.subscriber.Subscribe(ctx, events.TopicTurnCompleted)
	if err != nil {
		return err
	}
	go b.consumeTurnCompleted(turnMessages)

	deleteMessages, err := b.subscriber.Subscribe(ctx, events.TopicSessionDeleted)
	if err != nil {
		return err
	}
	go b.consumeSessionDeleted(deleteMessages)

	return nil
}

func (b *Bridge) consumeTurnCompleted(messages <-chan *message.Message) {
	for msg := range messages {
		var ev events.TurnCompletedEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			b.logger.Warn("Bridge", "Malformed turn event", map[string]interface{}{"error": err.Error()})
			msg.Ack()
			continue
		}

		b.hub.Send(ev.UserId, "turn_completed", ev)
		msg.Ack()
	}
}

func (b *Bridge) consumeSessionDeleted(messages <-chan *message.Message) {
	for msg := range messages {
		var ev events.SessionDeletedEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			b.logger.Warn("Bridge", "Malformed session event", map[string]interface{}{"error": err.Error()})
			msg.Ack()
			continue
		}

		b.hub.Send(ev.UserId, "session_deleted", ev)
		msg.Ack()
	}
}
