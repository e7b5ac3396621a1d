package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/gearshare-backend/pkg/config"
)

type fakeCmdable struct {
	counts  map[string]int64
	expires map[string]time.Duration
}

func newFakeCmdable() *fakeCmdable {
	return &fakeCmdable{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (f *fakeCmdable) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeCmdable) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeCmdable) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(true, nil)
}

func (f *fakeCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCmdable) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.expires[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestIncrWithTTLSetsExpiryOnFirstHitOnly(t *testing.T) {
	fake := newFakeCmdable()
	client := &Client{store: fake}
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		count, err := client.IncrWithTTL(ctx, "k", time.Minute)
		if err != nil {
			t.Fatalf("incr: %v", err)
		}
		if count != int64(i) {
			t.Fatalf("expected count %d got %d", i, count)
		}
	}
	if len(fake.expires) != 1 || fake.expires["k"] != time.Minute {
		t.Fatalf("expected a single expire call, got %v", fake.expires)
	}
}

func TestGetReturnsRedisNil(t *testing.T) {
	client := &Client{store: newFakeCmdable()}
	if _, err := client.Get(context.Background(), "missing"); !errors.Is(err, redis.Nil) {
		t.Fatalf("expected redis.Nil, got %v", err)
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	var client *Client
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected error from nil client")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close on nil client should be a no-op: %v", err)
	}
}

func TestKeysAreNamespaced(t *testing.T) {
	client := &Client{}
	if got := client.AccessSessionKey("abc"); got != "gs:session:access:abc" {
		t.Fatalf("unexpected session key %q", got)
	}
	if got := client.RateLimitKey("login:ip:1.2.3.4"); got != "gs:rate_limit:login:ip:1.2.3.4" {
		t.Fatalf("unexpected rate limit key %q", got)
	}
	if got := client.LockKey(" cron "); got != "gs:lock:cron" {
		t.Fatalf("unexpected lock key %q", got)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error when url and address are empty")
	}
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6380/2", PoolSize: 7, DialTimeout: time.Second})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Addr != "localhost:6380" || opts.DB != 2 {
		t.Fatalf("unexpected parsed options %s db=%d", opts.Addr, opts.DB)
	}
	if opts.PoolSize != 7 || opts.DialTimeout != time.Second {
		t.Fatalf("expected pool settings from config")
	}
	opts, err = optionsFromConfig(config.RedisConfig{Address: "cache:6379", DB: 3})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Addr != "cache:6379" || opts.DB != 3 {
		t.Fatalf("unexpected address options %s db=%d", opts.Addr, opts.DB)
	}
}
