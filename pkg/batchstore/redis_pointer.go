package batchstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisPointer is a LatestPointer backed by a single Redis key, for issuer
// deployments running multiple replicas against a shared object store
// backend (S3Store/GCSStore) whose own "latest" object offers no atomic
// compare-and-swap. Unlike the teacher's rate limiter, there is no
// contended read-modify-write here — SET is a plain last-writer-wins
// assignment — so no Lua script is needed.
type RedisPointer struct {
	client *redis.Client
	key    string
}

// NewRedisPointer constructs a RedisPointer. key names the Redis key
// holding the decimal batch number (e.g. "mtc:issuer-1:latest").
func NewRedisPointer(addr, password string, db int, key string) *RedisPointer {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisPointer{client: client, key: key}
}

func (p *RedisPointer) Latest(ctx context.Context) (uint32, bool, error) {
	val, err := p.client.Get(ctx, p.key).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("batchstore: redis get %s: %w", p.key, err)
	}
	n, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, false, fmt.Errorf("batchstore: malformed latest pointer: %w", err)
	}
	return uint32(n), true, nil
}

func (p *RedisPointer) SetLatest(ctx context.Context, batchNumber uint32) error {
	if err := p.client.Set(ctx, p.key, strconv.FormatUint(uint64(batchNumber), 10), 0).Err(); err != nil {
		return fmt.Errorf("batchstore: redis set %s: %w", p.key, err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (p *RedisPointer) Close() error {
	return p.client.Close()
}
