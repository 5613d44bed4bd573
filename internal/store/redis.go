package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/i474232898/agri-advisor/internal/weather"
)

const redisKeyPrefix = "agri-advisor:samples:"

// RedisStore caches forecast samples in Redis so several instances share them.
type RedisStore struct {
	rc *redis.Client
}

func NewRedisStore(rc *redis.Client) *RedisStore {
	return &RedisStore{rc: rc}
}

// NewRedisStoreFromAddr dials addr and verifies the connection.
func NewRedisStoreFromAddr(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	rc := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedisStore(rc), nil
}

func (s *RedisStore) Get(ctx context.Context, loc weather.Location) ([]weather.Observation, bool, error) {
	raw, err := s.rc.Get(ctx, redisKeyPrefix+loc.Key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", loc.Key(), err)
	}

	var samples []weather.Observation
	if err := json.Unmarshal(raw, &samples); err != nil {
		return nil, false, fmt.Errorf("error unmarshalling cached samples for %s: %w", loc.Key(), err)
	}
	return samples, true, nil
}

func (s *RedisStore) Set(ctx context.Context, loc weather.Location, samples []weather.Observation, ttl time.Duration) error {
	raw, err := json.Marshal(samples)
	if err != nil {
		return err
	}
	if err := s.rc.Set(ctx, redisKeyPrefix+loc.Key(), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", loc.Key(), err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rc.Close()
}

var _ weather.SampleCache = (*RedisStore)(nil)
