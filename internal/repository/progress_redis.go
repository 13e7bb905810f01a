package repository

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"vocab_quiz_backend/internal/quiz"
)

// RedisProgressStore 每个题集一个 JSON 字符串键，ttl 为 0 时不过期
type RedisProgressStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisProgressStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisProgressStore {
	return &RedisProgressStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisProgressStore) key(setKey string) string {
	return s.prefix + setKey
}

func (s *RedisProgressStore) Save(ctx context.Context, setKey string, snap quiz.Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(setKey), data, s.ttl).Err()
}

func (s *RedisProgressStore) Load(ctx context.Context, setKey string) (*quiz.Snapshot, error) {
	data, err := s.rdb.Get(ctx, s.key(setKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(data)
}

func (s *RedisProgressStore) Clear(ctx context.Context, setKey string) error {
	return s.rdb.Del(ctx, s.key(setKey)).Err()
}
