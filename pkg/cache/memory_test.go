package cache

import (
	"context"
	"testing"
	"time"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	ctx := context.Background()
	if err := mc.Set(ctx, "k", payload{Name: "btc", Count: 3}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got payload
	if err := mc.Get(ctx, "k", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "btc" || got.Count != 3 {
		t.Fatalf("unexpected value %+v", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	var got payload
	if err := mc.Get(context.Background(), "absent", &got); err != ErrCacheMiss {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	ctx := context.Background()
	if err := mc.Set(ctx, "k", payload{Name: "btc"}, time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	var got payload
	if err := mc.Get(ctx, "k", &got); err != ErrCacheMiss {
		t.Fatalf("expected ErrCacheMiss after expiry, got %v", err)
	}
}

func TestMemoryCacheDeleteAndExists(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	ctx := context.Background()
	_ = mc.Set(ctx, "k", payload{}, time.Minute)

	ok, err := mc.Exists(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("exists = %v, %v", ok, err)
	}

	_ = mc.Delete(ctx, "k")
	ok, _ = mc.Exists(ctx, "k")
	if ok {
		t.Fatal("expected key gone after delete")
	}
}
