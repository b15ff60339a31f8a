// internal/workers/infrastructure/resolve-session/store.go
package resolvesession

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttributeStore keeps session attributes between turns.
type AttributeStore interface {
	// Load returns nil attributes and no error for an unknown session.
	Load(ctx context.Context, sessionID string) (map[string]string, error)
	Save(ctx context.Context, sessionID string, attrs map[string]string) error
}

const keyPrefix = "session:"

// RedisStore stores attributes as one JSON value per session with a TTL.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (map[string]string, error) {
	val, err := s.client.Get(ctx, keyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var attrs map[string]string
	if err := json.Unmarshal([]byte(val), &attrs); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return attrs, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, attrs map[string]string) error {
	data, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+sessionID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
