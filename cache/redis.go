package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// UseRedisCache replaces the default in-process cache with a redis-backed one.
func UseRedisCache(opts *redis.Options) error {
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return errors.Wrap(err, "cache: could not connect to redis")
	}
	c = &redisBackend{rdb: rdb}
	return nil
}

type redisBackend struct {
	rdb *redis.Client
}

func (b *redisBackend) Get(key string) ([]byte, bool, error) {
	data, err := b.rdb.Get(context.Background(), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "cache: redis get failed")
	}
	return data, true, nil
}

func (b *redisBackend) Set(key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return errors.Wrap(
		b.rdb.Set(context.Background(), key, value, ttl).Err(),
		"cache: redis set failed",
	)
}

func (b *redisBackend) Delete(key string) error {
	return errors.Wrap(
		b.rdb.Del(context.Background(), key).Err(),
		"cache: redis delete failed",
	)
}

func (b *redisBackend) Clear(prefix string) error {
	ctx := context.Background()
	iter := b.rdb.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := b.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return errors.Wrap(err, "cache: redis clear failed")
		}
	}
	return errors.Wrap(iter.Err(), "cache: redis scan failed")
}
