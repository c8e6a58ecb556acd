package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByChatSessionID struct {
	ChatSessionID uuid.UUID
}

func (s ByChatSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.ChatSessionID)
}

type BySequenceNumber struct {
	SequenceNumber int
}

func (s BySequenceNumber) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("sequence_number = ?", s.SequenceNumber)
}
