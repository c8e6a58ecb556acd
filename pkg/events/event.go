package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TopicTurnCompleted  = "chat.turn.completed"
	TopicSessionDeleted = "chat.session.deleted"
)

// TurnCompletedEvent is published after a submission commits both turns.
type TurnCompletedEvent struct {
	SessionId         uuid.UUID `json:"session_id"`
	UserId            uuid.UUID `json:"user_id"`
	UserSequence      int       `json:"user_sequence"`
	AssistantSequence int       `json:"assistant_sequence"`
	OccurredAt        time.Time `json:"occurred_at"`
}

type SessionDeletedEvent struct {
	SessionId  uuid.UUID `json:"session_id"`
	UserId     uuid.UUID `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
