package mapper

import (
	"encoding/json"
	"time"

	"github.com/Mtank10/career-counselling-chat-app/internal/entity"
	"github.com/Mtank10/career-counselling-chat-app/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// turnMeta is the jsonb payload carrying generation metadata on assistant turns.
type turnMeta struct {
	Model  string `json:"model,omitempty"`
	Tokens int    `json:"tokens,omitempty"`
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatSession{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: s.DeletedAt.Valid,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.ChatSession{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

// Turn Mappers

func (m *ChatMapper) ChatTurnToEntity(t *model.ChatTurn) *entity.ChatTurn {
	if t == nil {
		return nil
	}

	var meta turnMeta
	if len(t.Meta) > 0 {
		_ = json.Unmarshal(t.Meta, &meta)
	}

	return &entity.ChatTurn{
		Id:             t.Id,
		ChatSessionId:  t.ChatSessionId,
		Role:           entity.TurnRole(t.Role),
		Content:        t.Content,
		SequenceNumber: t.SequenceNumber,
		Model:          meta.Model,
		Tokens:         meta.Tokens,
		CreatedAt:      t.CreatedAt,
	}
}

func (m *ChatMapper) ChatTurnToModel(t *entity.ChatTurn) *model.ChatTurn {
	if t == nil {
		return nil
	}

	var meta datatypes.JSON
	if t.Model != "" || t.Tokens > 0 {
		raw, err := json.Marshal(turnMeta{Model: t.Model, Tokens: t.Tokens})
		if err == nil {
			meta = datatypes.JSON(raw)
		}
	}

	return &model.ChatTurn{
		Id:             t.Id,
		ChatSessionId:  t.ChatSessionId,
		Role:           string(t.Role),
		Content:        t.Content,
		SequenceNumber: t.SequenceNumber,
		Meta:           meta,
		CreatedAt:      t.CreatedAt,
	}
}

func (m *ChatMapper) ChatTurnsToEntities(models []*model.ChatTurn) []*entity.ChatTurn {
	entities := make([]*entity.ChatTurn, len(models))
	for i, t := range models {
		entities[i] = m.ChatTurnToEntity(t)
	}
	return entities
}
