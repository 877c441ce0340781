package cache

import (
	"context"
	"testing"
	"time"
)

func TestRedis_UnavailableBypasses(t *testing.T) {
	r := NewRedisWithClient(nil, nil)
	ctx := context.Background()

	if r.Available() {
		t.Fatalf("expected unavailable cache")
	}
	if err := r.Ping(ctx); err == nil {
		t.Fatalf("expected ping error")
	}

	var out map[string]string
	hit, err := r.GetJSON(ctx, "k", &out)
	if hit || err != nil {
		t.Fatalf("expected miss without error, got %v %v", hit, err)
	}
	if err := r.SetJSON(ctx, "k", map[string]string{"a": "b"}, time.Minute); err != nil {
		t.Fatalf("expected no-op set, got %v", err)
	}
	if v, err := r.Incr(ctx, "ver"); v != 0 || err != nil {
		t.Fatalf("expected zero counter, got %d %v", v, err)
	}
	if v, err := r.GetInt(ctx, "ver"); v != 0 || err != nil {
		t.Fatalf("expected zero counter, got %d %v", v, err)
	}
	ok, err := r.SetIfNotExists(ctx, "lock", "1", time.Second)
	if !ok || err != nil {
		t.Fatalf("expected lock granted without cache, got %v %v", ok, err)
	}
	if deleted, err := r.DeleteIfValue(ctx, "lock", "1"); deleted || err != nil {
		t.Fatalf("expected no-op release, got %v %v", deleted, err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("unexpected close err: %v", err)
	}
}
