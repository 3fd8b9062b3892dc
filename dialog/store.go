package dialog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "starsbot:dialog:"

// DefaultTTL is how long an idle dialog survives
const DefaultTTL = 10 * time.Minute

// Store persists dialog sessions per admin
type Store interface {
	// Load returns the session or nil when none is active
	Load(ctx context.Context, adminID int64) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, adminID int64) error
}

// RedisStore keeps sessions as JSON values that expire after ttl
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a session store on the given client
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(adminID int64) string {
	return keyPrefix + strconv.FormatInt(adminID, 10)
}

func (s *RedisStore) Load(ctx context.Context, adminID int64) (*Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(adminID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dialog session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("failed to decode dialog session: %w", err)
	}
	return &session, nil
}

// Save writes the session and restarts its expiry
func (s *RedisStore) Save(ctx context.Context, session *Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode dialog session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(session.AdminID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save dialog session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, adminID int64) error {
	if err := s.client.Del(ctx, sessionKey(adminID)).Err(); err != nil {
		return fmt.Errorf("failed to delete dialog session: %w", err)
	}
	return nil
}
