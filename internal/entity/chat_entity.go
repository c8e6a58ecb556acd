package entity

import (
	"time"

	"github.com/google/uuid"
)

// TurnRole is a closed set; anything else is rejected before it reaches the store.
type TurnRole string

const (
	TurnRoleUser      TurnRole = "user"
	TurnRoleAssistant TurnRole = "assistant"
	TurnRoleSystem    TurnRole = "system"
)

func (r TurnRole) Valid() bool {
	switch r {
	case TurnRoleUser, TurnRoleAssistant, TurnRoleSystem:
		return true
	}
	return false
}

type ChatSession struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

// ChatTurn is one message within a session. SequenceNumber starts at 1 and is
// unique and strictly increasing per session.
type ChatTurn struct {
	Id             uuid.UUID
	ChatSessionId  uuid.UUID
	Role           TurnRole
	Content        string
	SequenceNumber int
	Model          string
	Tokens         int
	CreatedAt      time.Time
}
