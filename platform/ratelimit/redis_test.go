package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisAllowsUpToLimit(t *testing.T) {
	_, client := newTestRedis(t)
	r := NewRedis(client, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := r.Allow(ctx, "1.2.3.4:search")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	ok, err := r.Allow(ctx, "1.2.3.4:search")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("request over the limit should be rejected")
	}
}

func TestRedisWindowExpires(t *testing.T) {
	mr, client := newTestRedis(t)
	r := NewRedis(client, 1, time.Minute)
	ctx := context.Background()

	if ok, _ := r.Allow(ctx, "k"); !ok {
		t.Fatal("first request should be allowed")
	}
	if ok, _ := r.Allow(ctx, "k"); ok {
		t.Fatal("second request within the window should be rejected")
	}

	mr.FastForward(61 * time.Second)

	if ok, _ := r.Allow(ctx, "k"); !ok {
		t.Fatal("request after the window expired should be allowed")
	}
}

func TestRedisBucketsAreIndependent(t *testing.T) {
	_, client := newTestRedis(t)
	r := NewRedis(client, 1, time.Minute)
	ctx := context.Background()

	if ok, _ := r.Allow(ctx, "a:search"); !ok {
		t.Fatal("first key should be allowed")
	}
	if ok, _ := r.Allow(ctx, "b:search"); !ok {
		t.Fatal("independent key should be allowed")
	}
}
