package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "gym:session:"

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps each session as a Redis hash with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	idle   time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
// POST: Returns a store backed by a reachable server, or an error
func NewRedisStore(ctx context.Context, opts RedisOptions, idle time.Duration) (*RedisStore, error) {
	const op = "session.NewRedisStore"
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &RedisStore{client: client, idle: idle}, nil
}

func redisKey(sid string) string { return keyPrefix + sid }

// Get returns the value stored under key and extends the session TTL.
func (s *RedisStore) Get(ctx context.Context, sid, key string) (string, bool, error) {
	const op = "session.Get"
	val, err := s.client.HGet(ctx, redisKey(sid), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.client.Expire(ctx, redisKey(sid), s.idle).Err(); err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return val, true, nil
}

// Set stores value under key and extends the session TTL.
func (s *RedisStore) Set(ctx context.Context, sid, key, value string) error {
	const op = "session.Set"
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, redisKey(sid), key, value)
		pipe.Expire(ctx, redisKey(sid), s.idle)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Delete removes key from the session.
func (s *RedisStore) Delete(ctx context.Context, sid, key string) error {
	if err := s.client.HDel(ctx, redisKey(sid), key).Err(); err != nil {
		return fmt.Errorf("session.Delete: %w", err)
	}
	return nil
}

// Destroy removes the whole session.
func (s *RedisStore) Destroy(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, redisKey(sid)).Err(); err != nil {
		return fmt.Errorf("session.Destroy: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the Redis connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
