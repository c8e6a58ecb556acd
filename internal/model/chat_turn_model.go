package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ChatTurn rows are append-only. The composite unique index backs the
// per-session sequence invariant: a colliding insert fails instead of
// silently producing duplicate sequence numbers.
type ChatTurn struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId  uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_session_sequence"`
	Role           string         `gorm:"type:varchar(16);not null"`
	Content        string         `gorm:"type:text;not null"`
	SequenceNumber int            `gorm:"not null;uniqueIndex:idx_session_sequence"`
	Meta           datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
}

func (ChatTurn) TableName() string {
	return "chat_turns"
}
