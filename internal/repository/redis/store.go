package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 500 * time.Millisecond

var ErrRedisUnavailable = errors.New("redis unavailable")

// Store 以 redis string 实现的不透明键值存储，值不设过期
type Store struct {
	RDB *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{RDB: rdb}
}

// Get key 不存在时返回空切片
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.RDB.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrRedisUnavailable, err)
	}
	return b, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.RDB.Set(ctx, key, value, 0).Err(); err != nil {
		return errors.Join(ErrRedisUnavailable, err)
	}
	return nil
}

func (s *Store) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return s.RDB.Ping(ctx).Err() == nil
}
