package events

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Publisher wraps the in-process bus. Publish failures are reported to the
// caller but are never fatal to a submission: events are best-effort fan-out.
type Publisher struct {
	pub message.Publisher
}

func NewPublisher(pub message.Publisher) *Publisher {
	return &Publisher{pub: pub}
}

func (p *Publisher) PublishTurnCompleted(ev TurnCompletedEvent) error {
	return p.publish(TopicTurnCompleted, ev)
}

func (p *Publisher) PublishSessionDeleted(ev SessionDeletedEvent) error {
	return p.publish(TopicSessionDeleted, ev)
}

func (p *Publisher) publish(topic string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.pub.Publish(topic, message.NewMessage(watermill.NewUUID(), raw))
}
