package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "propeval:cache:"

// RedisStore shares cache entries between evaluator instances.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store on an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// DialRedis connects to addr and verifies the connection.
func DialRedis(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return NewRedisStore(client), nil
}

// Name identifies the tier in metrics.
func (s *RedisStore) Name() string { return "redis" }

// Get returns an entry and its remaining TTL; redis expires keys itself.
func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	pipe := s.client.TxPipeline()
	get := pipe.Get(ctx, redisKeyPrefix+key)
	pttl := pipe.PTTL(ctx, redisKeyPrefix+key)
	_, err := pipe.Exec(ctx)
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("reading cache entry: %w", err)
	}
	data, err := get.Bytes()
	if err != nil {
		return Entry{}, false, fmt.Errorf("reading cache entry: %w", err)
	}
	return Entry{Value: data, TTL: pttl.Val()}, true, nil
}

// Set stores an entry with its TTL.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, redisKeyPrefix+key, value, ttl).Err()
}

// Clear removes every key under the cache prefix.
func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 500).Iterator()
	pipe := s.client.Pipeline()
	for iter.Next(ctx) {
		pipe.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scanning cache keys: %w", err)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Sweep is a no-op; redis evicts expired keys.
func (s *RedisStore) Sweep(ctx context.Context) (int64, error) {
	return 0, nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
