package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "talentsift:session:"

// Connect создаёт клиент Redis из URL (redis://...) или адреса host:port.
func Connect(_ context.Context, redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("session: разбор redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

// RedisStore хранит контексты в Redis в виде JSON с TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore создаёт хранилище поверх готового клиента.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(sessionID string) string {
	return keyPrefix + sessionID
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (Context, error) {
	raw, err := s.client.Get(ctx, redisKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Context{}, ErrNotFound
		}
		return Context{}, fmt.Errorf("session: redis get: %w", err)
	}

	var c Context
	if err := json.Unmarshal(raw, &c); err != nil {
		return Context{}, fmt.Errorf("session: разбор контекста: %w", err)
	}
	return c, nil
}

func (s *RedisStore) Save(ctx context.Context, c Context) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("session: сериализация контекста: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(c.SessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, redisKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
