package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache 封裝 Redis 操作，*redis.Client 直接實作
// ttl <= 0 表示不設過期
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

type FakeCache struct {
	SetFn    func(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	ExistsFn func(ctx context.Context, keys ...string) *redis.IntCmd
	PingFn   func(ctx context.Context) *redis.StatusCmd
	CloseFn  func() error
}

func (f *FakeCache) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.SetFn != nil {
		return f.SetFn(ctx, key, value, expiration)
	}
	panic("unexpected Set")
}

func (f *FakeCache) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	if f.ExistsFn != nil {
		return f.ExistsFn(ctx, keys...)
	}
	panic("unexpected Exists")
}

func (f *FakeCache) Ping(ctx context.Context) *redis.StatusCmd {
	if f.PingFn != nil {
		return f.PingFn(ctx)
	}
	panic("unexpected Ping")
}

// Close 未設定時為 no-op
func (f *FakeCache) Close() error {
	if f.CloseFn != nil {
		return f.CloseFn()
	}
	return nil
}
