package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryCache_SetGet(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", payload{Name: "a", Count: 2}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got payload
	if err := mc.Get(ctx, "k", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "a" || got.Count != 2 {
		t.Errorf("unexpected value %+v", got)
	}
}

func TestMemoryCache_Miss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	var got payload
	err := mc.Get(context.Background(), "absent", &got)
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", payload{Name: "a"}, 10*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	var got payload
	if err := mc.Get(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected expired entry to miss, got %v", err)
	}
}

func TestMemoryCache_DeleteByPattern(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "window:voltage", payload{}, time.Minute)
	_ = mc.Set(ctx, "window:current", payload{}, time.Minute)
	_ = mc.Set(ctx, "other:key", payload{}, time.Minute)

	if err := mc.DeleteByPattern(ctx, "window:*"); err != nil {
		t.Fatalf("delete by pattern: %v", err)
	}

	var got payload
	if err := mc.Get(ctx, "window:voltage", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected window:voltage removed")
	}
	if err := mc.Get(ctx, "other:key", &got); err != nil {
		t.Errorf("expected other:key to survive, got %v", err)
	}
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "a", payload{}, time.Minute)
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "b", payload{}, time.Minute)
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "c", payload{}, time.Minute) // evicts "a"

	var got payload
	if err := mc.Get(ctx, "a", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected oldest key evicted, got %v", err)
	}
	if err := mc.Get(ctx, "c", &got); err != nil {
		t.Errorf("expected newest key present, got %v", err)
	}
}
