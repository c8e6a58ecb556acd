package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionResponse struct {
	Id    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type SessionSummary struct {
	Id           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	FirstMessage string     `json:"first_message"`
	LastMessage  string     `json:"last_message"`
	TurnCount    int64      `json:"turn_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

type ListSessionsResponse struct {
	Sessions   []*SessionSummary `json:"sessions"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

type TurnDTO struct {
	Id             uuid.UUID `json:"id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	SequenceNumber int       `json:"sequence_number"`
	Model          string    `json:"model,omitempty"`
	Tokens         int       `json:"tokens,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type SessionDetailResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
	Turns     []*TurnDTO `json:"turns"`
}

type SendMessageRequest struct {
	Message string `json:"message" validate:"required,min=1"`
}

type SendMessageResponse struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	SessionTitle  string    `json:"title"`
	UserTurn      *TurnDTO  `json:"user_turn"`
	AssistantTurn *TurnDTO  `json:"assistant_turn"`
}
