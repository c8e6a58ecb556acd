package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Mtank10/career-counselling-chat-app/internal/entity"

	"github.com/google/uuid"
	redisv9 "github.com/redis/go-redis/v9"
)

// HistoryCache is a read-through cache of a session's ordered turn list.
// Every turn write invalidates the key. A nil client degrades to
// cache-miss-always so the service works without Redis.
type HistoryCache struct {
	client     *redisv9.Client
	historyTTL time.Duration
}

func NewHistoryCache(client *redisv9.Client, historyTTL time.Duration) *HistoryCache {
	if historyTTL <= 0 {
		historyTTL = 60 * time.Second
	}
	return &HistoryCache{
		client:     client,
		historyTTL: historyTTL,
	}
}

func (c *HistoryCache) GetTurns(ctx context.Context, sessionId uuid.UUID) ([]*entity.ChatTurn, bool, error) {
	if c.client == nil {
		return nil, false, nil
	}

	raw, err := c.client.Get(ctx, c.historyKey(sessionId)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get history failed: %w", err)
	}

	var turns []*entity.ChatTurn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached history failed: %w", err)
	}
	return turns, true, nil
}

func (c *HistoryCache) SetTurns(ctx context.Context, sessionId uuid.UUID, turns []*entity.ChatTurn) error {
	if c.client == nil {
		return nil
	}

	payload, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("marshal history cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.historyKey(sessionId), payload, c.historyTTL).Err(); err != nil {
		return fmt.Errorf("redis set history failed: %w", err)
	}
	return nil
}

func (c *HistoryCache) Invalidate(ctx context.Context, sessionId uuid.UUID) error {
	if c.client == nil {
		return nil
	}

	if err := c.client.Del(ctx, c.historyKey(sessionId)).Err(); err != nil {
		return fmt.Errorf("redis delete history failed: %w", err)
	}
	return nil
}

func (c *HistoryCache) historyKey(sessionId uuid.UUID) string {
	return fmt.Sprintf("chat:history:%s", sessionId)
}
