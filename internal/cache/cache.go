package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the subset of the redis client the service needs.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

type FakeCache struct {
	GetFn   func(ctx context.Context, key string) *redis.StringCmd
	SetFn   func(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	DelFn   func(ctx context.Context, keys ...string) *redis.IntCmd
	CloseFn func() error
}

func (f *FakeCache) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.GetFn != nil {
		return f.GetFn(ctx, key)
	}
	panic("unexpected Get")
}

func (f *FakeCache) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.SetFn != nil {
		return f.SetFn(ctx, key, value, expiration)
	}
	panic("unexpected Set")
}

func (f *FakeCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if f.DelFn != nil {
		return f.DelFn(ctx, keys...)
	}
	panic("unexpected Del")
}

func (f *FakeCache) Close() error {
	if f.CloseFn != nil {
		return f.CloseFn()
	}
	return nil
}

// MapCache is an in-process FakeCache backed by a map.
func MapCache() *FakeCache {
	var mu sync.Mutex
	data := map[string]string{}
	return &FakeCache{
		GetFn: func(ctx context.Context, key string) *redis.StringCmd {
			mu.Lock()
			defer mu.Unlock()
			cmd := redis.NewStringCmd(ctx, "get", key)
			if v, ok := data[key]; ok {
				cmd.SetVal(v)
			} else {
				cmd.SetErr(redis.Nil)
			}
			return cmd
		},
		SetFn: func(ctx context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
			mu.Lock()
			defer mu.Unlock()
			switch v := value.(type) {
			case []byte:
				data[key] = string(v)
			case string:
				data[key] = v
			}
			cmd := redis.NewStatusCmd(ctx, "set", key)
			cmd.SetVal("OK")
			return cmd
		},
		DelFn: func(ctx context.Context, keys ...string) *redis.IntCmd {
			mu.Lock()
			defer mu.Unlock()
			var n int64
			for _, k := range keys {
				if _, ok := data[k]; ok {
					delete(data, k)
					n++
				}
			}
			cmd := redis.NewIntCmd(ctx, "del")
			cmd.SetVal(n)
			return cmd
		},
	}
}
