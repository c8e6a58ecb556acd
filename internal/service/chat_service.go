package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/Mtank10/career-counselling-chat-app/internal/apperror"
	"github.com/Mtank10/career-counselling-chat-app/internal/cache"
	"github.com/Mtank10/career-counselling-chat-app/internal/dto"
	"github.com/Mtank10/career-counselling-chat-app/internal/entity"
	"github.com/Mtank10/career-counselling-chat-app/internal/pkg/locker"
	"github.com/Mtank10/career-counselling-chat-app/internal/pkg/logger"
	"github.com/Mtank10/career-counselling-chat-app/internal/repository/specification"
	"github.com/Mtank10/career-counselling-chat-app/internal/repository/unitofwork"
	"github.com/Mtank10/career-counselling-chat-app/pkg/events"
	"github.com/Mtank10/career-counselling-chat-app/pkg/llm"

	"github.com/google/uuid"
)

const (
	defaultSessionTitle = "New Conversation"
	titleMaxLength      = 40
	defaultListLimit    = 10
)

// IChatService covers the session lifecycle and the turn pipeline.
type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error)
	GetSessions(ctx context.Context, userId uuid.UUID, limit int, cursor string) (*dto.ListSessionsResponse, error)
	GetSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.SessionDetailResponse, error)
	SendMessage(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
}

// ResponseGenerator is the generation client. Generate is total: it degrades
// to a fallback reply instead of failing.
type ResponseGenerator interface {
	Generate(ctx context.Context, history []llm.Message) string
	Model() string
}

// EventPublisher fans out post-commit events. Best effort only.
type EventPublisher interface {
	PublishTurnCompleted(ev events.TurnCompletedEvent) error
	PublishSessionDeleted(ev events.SessionDeletedEvent) error
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	generator  ResponseGenerator
	locks      *locker.SessionLocker
	history    *cache.HistoryCache
	publisher  EventPublisher
	logger     logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	generator ResponseGenerator,
	locks *locker.SessionLocker,
	history *cache.HistoryCache,
	publisher EventPublisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		generator:  generator,
		locks:      locks,
		history:    history,
		publisher:  publisher,
		logger:     log,
	}
}

func (s *chatService) CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     defaultSessionTitle,
		CreatedAt: time.Now(),
	}

	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: session.Id, Title: session.Title}, nil
}

func (s *chatService) GetSessions(ctx context.Context, userId uuid.UUID, limit int, cursor string) (*dto.ListSessionsResponse, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.OrderBy{Field: "id", Desc: true},
		specification.Limit{Limit: limit + 1},
	}
	if cursor != "" {
		before, lastId, err := decodeCursor(cursor)
		if err != nil {
			return nil, apperror.Validation("invalid cursor")
		}
		specs = append(specs, specification.UpdatedBefore{Before: before, LastID: lastId})
	}

	sessions, err := uow.ChatSessionRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(sessions) > limit {
		sessions = sessions[:limit]
		last := sessions[len(sessions)-1]
		nextCursor = encodeCursor(sessionActivityAt(last), last.Id)
	}

	summaries := make([]*dto.SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		summary := &dto.SessionSummary{
			Id:        sess.Id,
			Title:     sess.Title,
			CreatedAt: sess.CreatedAt,
			UpdatedAt: sess.UpdatedAt,
		}

		count, err := uow.ChatTurnRepository().Count(ctx, specification.ByChatSessionID{ChatSessionID: sess.Id})
		if err != nil {
			return nil, err
		}
		summary.TurnCount = count

		if count > 0 {
			first, err := uow.ChatTurnRepository().FindOne(ctx,
				specification.ByChatSessionID{ChatSessionID: sess.Id},
				specification.OrderBy{Field: "sequence_number", Desc: false},
			)
			if err != nil {
				return nil, err
			}
			last, err := uow.ChatTurnRepository().FindOne(ctx,
				specification.ByChatSessionID{ChatSessionID: sess.Id},
				specification.OrderBy{Field: "sequence_number", Desc: true},
			)
			if err != nil {
				return nil, err
			}
			if first != nil {
				summary.FirstMessage = first.Content
			}
			if last != nil {
				summary.LastMessage = last.Content
			}
		}

		summaries = append(summaries, summary)
	}

	return &dto.ListSessionsResponse{Sessions: summaries, NextCursor: nextCursor}, nil
}

func (s *chatService) GetSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.SessionDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Deactivated sessions stay addressable by id so historical turns
	// remain reachable; only listings exclude them.
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.IncludeDeleted{},
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.SessionAccess()
	}

	turns, err := s.loadTurns(ctx, uow, sessionId)
	if err != nil {
		return nil, err
	}

	turnDTOs := make([]*dto.TurnDTO, 0, len(turns))
	for _, t := range turns {
		turnDTOs = append(turnDTOs, toTurnDTO(t))
	}

	return &dto.SessionDetailResponse{
		Id:        session.Id,
		Title:     session.Title,
		IsActive:  !session.IsDeleted,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		Turns:     turnDTOs,
	}, nil
}

// SendMessage runs the turn pipeline: authorize, persist the user turn, load
// history, generate, persist the assistant turn, refresh session metadata.
// Appends are serialized per session so "count + 1" sequence assignment never
// collides; submissions to other sessions proceed concurrently.
func (s *chatService) SendMessage(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	content := strings.TrimSpace(req.Message)
	if content == "" {
		return nil, apperror.Validation("message must not be empty")
	}

	unlock := s.locks.Lock(sessionId)
	defer unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.SessionAccess()
	}

	now := time.Now()

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	prior, err := uow.ChatTurnRepository().Count(ctx, specification.ByChatSessionID{ChatSessionID: sessionId})
	if err != nil {
		return nil, err
	}

	userTurn := &entity.ChatTurn{
		Id:             uuid.New(),
		ChatSessionId:  sessionId,
		Role:           entity.TurnRoleUser,
		Content:        content,
		SequenceNumber: int(prior) + 1,
		CreatedAt:      now,
	}
	if err := uow.ChatTurnRepository().Create(ctx, userTurn); err != nil {
		return nil, err
	}

	// Title comes from the first user message and is never overwritten.
	if prior == 0 {
		session.Title = deriveTitle(content)
	}
	session.UpdatedAt = &now
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	s.invalidateHistory(ctx, sessionId)

	history, err := uow.ChatTurnRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "sequence_number", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	// May take seconds; only this session's lock is held.
	reply := s.generator.Generate(ctx, toLLMHistory(history))

	replyAt := time.Now()
	assistantTurn := &entity.ChatTurn{
		Id:             uuid.New(),
		ChatSessionId:  sessionId,
		Role:           entity.TurnRoleAssistant,
		Content:        reply,
		SequenceNumber: userTurn.SequenceNumber + 1,
		Model:          s.generator.Model(),
		Tokens:         estimateTokens(reply),
		CreatedAt:      replyAt,
	}

	uow2 := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow2.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow2.Rollback()

	if err := uow2.ChatTurnRepository().Create(ctx, assistantTurn); err != nil {
		return nil, err
	}

	session.UpdatedAt = &replyAt
	if err := uow2.ChatSessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}

	if err := uow2.Commit(); err != nil {
		return nil, err
	}
	s.invalidateHistory(ctx, sessionId)

	if err := s.publisher.PublishTurnCompleted(events.TurnCompletedEvent{
		SessionId:         sessionId,
		UserId:            userId,
		UserSequence:      userTurn.SequenceNumber,
		AssistantSequence: assistantTurn.SequenceNumber,
		OccurredAt:        replyAt,
	}); err != nil {
		s.logger.Warn("Chat", "Failed to publish turn event", map[string]interface{}{"error": err.Error()})
	}

	return &dto.SendMessageResponse{
		ChatSessionId: session.Id,
		SessionTitle:  session.Title,
		UserTurn:      toTurnDTO(userTurn),
		AssistantTurn: toTurnDTO(assistantTurn),
	}, nil
}

func (s *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.IncludeDeleted{},
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if session == nil {
		return apperror.SessionAccess()
	}

	// Deleting an already-inactive session is a no-op.
	if session.IsDeleted {
		return nil
	}

	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return err
	}
	s.invalidateHistory(ctx, sessionId)

	if err := s.publisher.PublishSessionDeleted(events.SessionDeletedEvent{
		SessionId:  sessionId,
		UserId:     userId,
		OccurredAt: time.Now(),
	}); err != nil {
		s.logger.Warn("Chat", "Failed to publish session deleted event", map[string]interface{}{"error": err.Error()})
	}

	return nil
}

// loadTurns is the read-through path used by session detail.
func (s *chatService) loadTurns(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) ([]*entity.ChatTurn, error) {
	cached, hit, err := s.history.GetTurns(ctx, sessionId)
	if err != nil {
		s.logger.Warn("Chat", "History cache read failed", map[string]interface{}{"error": err.Error()})
	}
	if hit {
		return cached, nil
	}

	turns, err := uow.ChatTurnRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "sequence_number", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	if err := s.history.SetTurns(ctx, sessionId, turns); err != nil {
		s.logger.Warn("Chat", "History cache write failed", map[string]interface{}{"error": err.Error()})
	}
	return turns, nil
}

func (s *chatService) invalidateHistory(ctx context.Context, sessionId uuid.UUID) {
	if err := s.history.Invalidate(ctx, sessionId); err != nil {
		s.logger.Warn("Chat", "History cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}

func deriveTitle(message string) string {
	runes := []rune(message)
	if len(runes) > titleMaxLength {
		return string(runes[:titleMaxLength]) + "..."
	}
	return message
}

func toLLMHistory(turns []*entity.ChatTurn) []llm.Message {
	messages := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, llm.Message{
			Role:    string(t.Role),
			Content: t.Content,
		})
	}
	return messages
}

func toTurnDTO(t *entity.ChatTurn) *dto.TurnDTO {
	return &dto.TurnDTO{
		Id:             t.Id,
		Role:           string(t.Role),
		Content:        t.Content,
		SequenceNumber: t.SequenceNumber,
		Model:          t.Model,
		Tokens:         t.Tokens,
		CreatedAt:      t.CreatedAt,
	}
}

// estimateTokens is a rough ~4 chars/token heuristic, recorded as metadata.
func estimateTokens(content string) int {
	return (len(content) + 3) / 4
}

// sessionActivityAt is the recency key used for ordering and cursors. Rows
// that were never updated fall back to their creation time.
func sessionActivityAt(s *entity.ChatSession) time.Time {
	if s.UpdatedAt != nil {
		return *s.UpdatedAt
	}
	return s.CreatedAt
}

func encodeCursor(t time.Time, id uuid.UUID) string {
	raw := t.UTC().Format(time.RFC3339Nano) + "|" + id.String()
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(cursor string) (time.Time, uuid.UUID, error) {
	raw, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, uuid.Nil, err
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, uuid.Nil, errors.New("malformed cursor")
	}
	t, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return time.Time{}, uuid.Nil, err
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return time.Time{}, uuid.Nil, err
	}
	return t, id, nil
}
