package ogcard

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCacheTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache(time.Minute, 10)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte("png")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(got) != "png" {
		t.Fatalf("Get = %q, %v, %v; want hit", got, ok, err)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("expected entry to expire")
	}
}

func TestMemoryCacheDisabled(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(-1, 10)
	_ = c.Set(ctx, "k", []byte("png"))
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("disabled cache returned a hit")
	}
}

func TestMemoryCacheEvictsOldest(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache(time.Hour, 2)
	c.now = func() time.Time { return now }

	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k))
		now = now.Add(time.Second)
	}
	if _, ok, _ := c.Get(ctx, "a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	for _, k := range []string{"b", "c"} {
		if _, ok, _ := c.Get(ctx, k); !ok {
			t.Errorf("entry %q missing", k)
		}
	}
}

func TestMemoryCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Hour, 0)
	_ = c.Set(ctx, "k", []byte("png"))
	c.Invalidate()
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("entry survived Invalidate")
	}
}
