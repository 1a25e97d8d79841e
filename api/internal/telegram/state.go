package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ChatState remembers which session a chat is currently answering.
type ChatState interface {
	SetSession(ctx context.Context, chatID int64, sessionID string) error
	Session(ctx context.Context, chatID int64) (string, bool, error)
	Clear(ctx context.Context, chatID int64) error
}

// MemoryState keeps chat state in process; it is lost on restart.
type MemoryState struct {
	m sync.Map // chatID -> sessionID
}

func (s *MemoryState) SetSession(_ context.Context, chatID int64, sessionID string) error {
	s.m.Store(chatID, sessionID)
	return nil
}

func (s *MemoryState) Session(_ context.Context, chatID int64) (string, bool, error) {
	if v, ok := s.m.Load(chatID); ok {
		if id, _ := v.(string); id != "" {
			return id, true, nil
		}
	}
	return "", false, nil
}

func (s *MemoryState) Clear(_ context.Context, chatID int64) error {
	s.m.Delete(chatID)
	return nil
}

const (
	redisKeyPrefix  = "geotutor:chat:"
	DefaultStateTTL = 24 * time.Hour
)

// RedisState shares chat state between bot replicas. Keys expire after TTL.
type RedisState struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisState(rdb *redis.Client, ttl time.Duration) *RedisState {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &RedisState{rdb: rdb, ttl: ttl}
}

func chatKey(chatID int64) string {
	return redisKeyPrefix + strconv.FormatInt(chatID, 10)
}

func (s *RedisState) SetSession(ctx context.Context, chatID int64, sessionID string) error {
	if err := s.rdb.Set(ctx, chatKey(chatID), sessionID, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set chat %d: %w", chatID, err)
	}
	return nil
}

func (s *RedisState) Session(ctx context.Context, chatID int64) (string, bool, error) {
	id, err := s.rdb.Get(ctx, chatKey(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get chat %d: %w", chatID, err)
	}
	return id, id != "", nil
}

func (s *RedisState) Clear(ctx context.Context, chatID int64) error {
	if err := s.rdb.Del(ctx, chatKey(chatID)).Err(); err != nil {
		return fmt.Errorf("redis del chat %d: %w", chatID, err)
	}
	return nil
}
