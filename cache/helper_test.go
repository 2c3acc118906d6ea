package cache_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-property-listing/cache"
	"github.com/goliatone/go-property-listing/pkg/testsupport"
)

func TestHelper_SetAndGet(t *testing.T) {
	ctx := context.Background()
	mr, client := testsupport.NewRedis(t)
	h := cache.NewHelper(client, zerolog.Nop(), 0)

	if !h.SetKey(ctx, "greeting", "hello", 0) {
		t.Fatal("SetKey() = false")
	}
	if ttl := mr.TTL("greeting"); ttl != cache.DefaultTTL {
		t.Errorf("TTL = %v, want %v", ttl, cache.DefaultTTL)
	}
	if got, _ := mr.Get("greeting"); got != "hello" {
		t.Errorf("stored = %q, want the raw string", got)
	}
	if got := h.GetKey(ctx, "greeting"); got != "hello" {
		t.Errorf("GetKey() = %v, want hello", got)
	}

	h.SetKey(ctx, "property:1", map[string]any{"id": "1", "price": 100}, time.Minute)
	got, ok := h.GetKey(ctx, "property:1").(map[string]any)
	if !ok || got["id"] != "1" || got["price"] != float64(100) {
		t.Errorf("GetKey() = %#v", h.GetKey(ctx, "property:1"))
	}
	if ttl := mr.TTL("property:1"); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}

	if got := h.GetKey(ctx, "missing"); got != nil {
		t.Errorf("GetKey() on a miss = %v, want nil", got)
	}
}

func TestHelper_DeleteExistsExpire(t *testing.T) {
	ctx := context.Background()
	mr, client := testsupport.NewRedis(t)
	h := cache.NewHelper(client, zerolog.Nop(), time.Hour)

	for _, key := range []string{"properties:filtered:a", "properties:filtered:b", "property:1"} {
		h.SetKey(ctx, key, "x", 0)
	}

	if n := h.DeleteKeysByPattern(ctx, "properties:filtered:*"); n != 2 {
		t.Errorf("DeleteKeysByPattern() = %d, want 2", n)
	}
	if n := h.DeleteKeysByPattern(ctx, "properties:filtered:*"); n != 0 {
		t.Errorf("second DeleteKeysByPattern() = %d, want 0", n)
	}

	if !h.KeyExists(ctx, "property:1") {
		t.Error("KeyExists() = false for a stored key")
	}
	if !h.SetExpiry(ctx, "property:1", 5*time.Second) {
		t.Error("SetExpiry() = false for a stored key")
	}
	if ttl := mr.TTL("property:1"); ttl != 5*time.Second {
		t.Errorf("TTL = %v, want 5s", ttl)
	}
	if h.SetExpiry(ctx, "property:2", time.Second) {
		t.Error("SetExpiry() = true for a missing key")
	}

	if !h.DeleteKey(ctx, "property:1") {
		t.Error("DeleteKey() = false for a stored key")
	}
	if h.DeleteKey(ctx, "property:1") {
		t.Error("DeleteKey() = true for a missing key")
	}
}

func TestHelper_FailuresAreLoggedAndSwallowed(t *testing.T) {
	ctx := context.Background()
	mr, client := testsupport.NewRedis(t)

	var logs bytes.Buffer
	h := cache.NewHelper(client, zerolog.New(&logs), 0)
	mr.SetError("ERR server unavailable")

	if h.SetKey(ctx, "k", "v", 0) {
		t.Error("SetKey() = true while the server fails")
	}
	if got := h.GetKey(ctx, "k"); got != nil {
		t.Errorf("GetKey() = %v, want nil", got)
	}
	if h.KeyExists(ctx, "k") {
		t.Error("KeyExists() = true while the server fails")
	}
	if n := h.DeleteKeysByPattern(ctx, "*"); n != 0 {
		t.Errorf("DeleteKeysByPattern() = %d, want 0", n)
	}

	for _, msg := range []string{"cache set failed", "cache get failed", "cache key listing failed"} {
		if !strings.Contains(logs.String(), msg) {
			t.Errorf("logs missing %q:\n%s", msg, logs.String())
		}
	}
}

func TestHelper_UnencodableValue(t *testing.T) {
	_, client := testsupport.NewRedis(t)
	h := cache.NewHelper(client, zerolog.Nop(), 0)

	if h.SetKey(context.Background(), "k", make(chan int), 0) {
		t.Error("SetKey() accepted a value JSON cannot encode")
	}
}
