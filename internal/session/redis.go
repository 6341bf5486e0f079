package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultRedisPrefix namespaces session keys.
	DefaultRedisPrefix = "archive:session:"
	// DefaultSessionTTL is how long an idle session is kept.
	DefaultSessionTTL = 7 * 24 * time.Hour

	redisOpTimeout = 3 * time.Second

	fieldPreferences = "prefs"
	fieldState       = "state"
)

// RedisRegistry keeps reader sessions in Redis hashes so that several
// server instances can share them. Each access extends the session TTL.
type RedisRegistry struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisRegistry connects to the server at redisURL
// (for example redis://:pass@host:6379/0) and checks it is reachable.
func NewRedisRegistry(ctx context.Context, redisURL, prefix string, ttl time.Duration) (*RedisRegistry, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}

	return NewRedisRegistryWithClient(rdb, prefix, ttl), nil
}

// NewRedisRegistryWithClient wraps an existing client.
func NewRedisRegistryWithClient(rdb *redis.Client, prefix string, ttl time.Duration) *RedisRegistry {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	return &RedisRegistry{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *RedisRegistry) key(id string) string { return r.prefix + id }

// Create starts a session with default preferences and returns its id.
func (r *RedisRegistry) Create(ctx context.Context) (string, error) {
	id := uuid.NewString()

	prefs, err := json.Marshal(DefaultPreferences())
	if err != nil {
		return "", err
	}

	state, err := json.Marshal(initialState)
	if err != nil {
		return "", err
	}

	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, r.key(id), fieldPreferences, prefs, fieldState, state)
	pipe.Expire(ctx, r.key(id), r.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	return id, nil
}

// Session returns the store for id and refreshes its TTL.
func (r *RedisRegistry) Session(ctx context.Context, id string) (Store, error) {
	ok, err := r.rdb.Expire(ctx, r.key(id), r.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	return &redisSession{rdb: r.rdb, key: r.key(id), ttl: r.ttl}, nil
}

// Delete removes the session id.
func (r *RedisRegistry) Delete(ctx context.Context, id string) error {
	n, err := r.rdb.Del(ctx, r.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	return nil
}

// Len counts live sessions by scanning the key prefix.
func (r *RedisRegistry) Len(ctx context.Context) (int, error) {
	n := 0

	iter := r.rdb.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}

	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	return n, nil
}

// Close closes the client.
func (r *RedisRegistry) Close() error {
	return r.rdb.Close()
}

type redisSession struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func (s *redisSession) get(field string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	data, err := s.rdb.HGet(ctx, s.key, field).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	return data, err
}

func (s *redisSession) set(field string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, s.key, field, data)
	pipe.Expire(ctx, s.key, s.ttl)

	_, err = pipe.Exec(ctx)

	return err
}

// LoadPreferences decodes stored preferences leniently; unreadable fields
// fall back to their defaults.
func (s *redisSession) LoadPreferences() (Preferences, error) {
	data, err := s.get(fieldPreferences)
	if err != nil {
		return DefaultPreferences(), fmt.Errorf("failed to load preferences: %w", err)
	}

	if data == nil {
		return DefaultPreferences(), nil
	}

	p, _, err := DecodePreferences(data)
	if err != nil {
		return DefaultPreferences(), nil
	}

	return p, nil
}

func (s *redisSession) SavePreferences(p Preferences) error {
	if err := s.set(fieldPreferences, p); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}

	return nil
}

func (s *redisSession) LoadState() (State, error) {
	data, err := s.get(fieldState)
	if err != nil {
		return initialState, fmt.Errorf("failed to load state: %w", err)
	}

	if data == nil {
		return initialState, nil
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return initialState, nil
	}

	return st, nil
}

func (s *redisSession) SaveState(st State) error {
	if err := s.set(fieldState, st); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	return nil
}
