package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	c := NewWithClient(client)
	t.Cleanup(func() { _ = c.Close() })
	return c, srv
}

func TestSetAndGetJSON(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Total int            `json:"total"`
		By    map[string]int `json:"by"`
	}

	in := payload{Total: 3, By: map[string]int{"new": 2, "contacted": 1}}
	if err := c.SetJSON(ctx, "stats", in, time.Minute); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	var out payload
	if err := c.GetJSON(ctx, "stats", &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if out.Total != in.Total || out.By["new"] != 2 {
		t.Errorf("roundtrip mismatch: got %+v want %+v", out, in)
	}
}

func TestGetJSONMiss(t *testing.T) {
	c, _ := newTestCache(t)

	var out map[string]int
	err := c.GetJSON(context.Background(), "absent", &out)
	if !errors.Is(err, ErrMiss) {
		t.Errorf("expected ErrMiss, got %v", err)
	}
}

func TestExpiry(t *testing.T) {
	c, srv := newTestCache(t)
	ctx := context.Background()

	if err := c.SetJSON(ctx, "k", 42, time.Second); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	srv.FastForward(2 * time.Second)

	var out int
	if err := c.GetJSON(ctx, "k", &out); !errors.Is(err, ErrMiss) {
		t.Errorf("expected ErrMiss after expiry, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	if err := c.SetJSON(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var out string
	if err := c.GetJSON(ctx, "k", &out); !errors.Is(err, ErrMiss) {
		t.Errorf("expected ErrMiss after delete, got %v", err)
	}
}
