package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/lshigami/orientation-event/config"
)

type stats struct {
	Total int     `json:"total"`
	Rate  float64 `json:"rate"`
}

func newCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, "test:"), mr
}

func TestCacheRoundTrip(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	var got stats
	if err := c.Get(ctx, "stats", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get before Set = %v, want miss", err)
	}
	if err := c.Set(ctx, "stats", stats{Total: 3, Rate: 33.33}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists("test:stats") {
		t.Error("value not stored under the prefixed key")
	}
	if err := c.Get(ctx, "stats", &got); err != nil || got.Total != 3 || got.Rate != 33.33 {
		t.Errorf("Get = %+v, %v", got, err)
	}

	mr.FastForward(2 * time.Minute)
	if err := c.Get(ctx, "stats", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after ttl = %v, want miss", err)
	}
}

func TestCacheDelete(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()
	_ = c.Set(ctx, "a", 1, time.Minute)

	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var n int
	if err := c.Get(ctx, "a", &n); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after Delete = %v", err)
	}
}

func TestCacheWithoutClient(t *testing.T) {
	c := New(nil, "x:")
	ctx := context.Background()
	if err := c.Set(ctx, "k", 1, time.Minute); err != nil {
		t.Errorf("Set without client = %v", err)
	}
	var n int
	if err := c.Get(ctx, "k", &n); !errors.Is(err, ErrCacheUnavailable) {
		t.Errorf("Get without client = %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete without client = %v", err)
	}
}

func TestNewRedisClient(t *testing.T) {
	client, err := NewRedisClient(&config.Config{})
	if err != nil || client != nil {
		t.Errorf("no url: %v, %v", client, err)
	}
	if _, err := NewRedisClient(&config.Config{Redis: config.Redis{URL: "::bad"}}); err == nil {
		t.Error("expected an error for a malformed url")
	}
	client, err = NewRedisClient(&config.Config{Redis: config.Redis{URL: "redis://localhost:6379/1"}})
	if err != nil || client == nil {
		t.Fatalf("valid url: %v, %v", client, err)
	}
	_ = client.Close()
}
