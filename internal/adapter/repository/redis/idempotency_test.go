package redis

import (
	"context"
	"testing"
	"time"
)

func TestIdempotencyFirstRequestClaimsKey(t *testing.T) {
	client := newTestRedisClient(t)
	store := NewIdempotencyStore(client)

	exists, _, err := store.CheckAndSet(context.Background(), "key-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("CheckAndSet: %v", err)
	}
	if exists {
		t.Fatal("first request should claim the key, not replay")
	}
}

func TestIdempotencyReplayReturnsStoredResponse(t *testing.T) {
	client := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	body := []byte(`{"transfer_id":"txn-1"}`)
	exists, _, err := store.CheckAndSet(ctx, "key-1", body, time.Minute)
	if err != nil {
		t.Fatalf("CheckAndSet: %v", err)
	}
	if exists {
		t.Fatal("first write should not report a replay")
	}

	exists, existing, err := store.CheckAndSet(ctx, "key-1", body, time.Minute)
	if err != nil {
		t.Fatalf("CheckAndSet replay: %v", err)
	}
	if !exists {
		t.Fatal("second request should be a replay")
	}
	if string(existing) != string(body) {
		t.Fatalf("replay body = %q, want %q", existing, body)
	}
}

func TestIdempotencyInFlightRequestSeesPlaceholder(t *testing.T) {
	client := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if _, _, err := store.CheckAndSet(ctx, "key-1", nil, time.Minute); err != nil {
		t.Fatalf("CheckAndSet: %v", err)
	}

	exists, existing, err := store.CheckAndSet(ctx, "key-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("CheckAndSet concurrent: %v", err)
	}
	if !exists {
		t.Fatal("concurrent request should observe the claimed key")
	}
	if string(existing) != processingPlaceholder {
		t.Fatalf("existing = %q, want processing placeholder", existing)
	}
}

func TestIdempotencyUpdateReplacesPlaceholder(t *testing.T) {
	client := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if _, _, err := store.CheckAndSet(ctx, "key-1", nil, time.Minute); err != nil {
		t.Fatalf("CheckAndSet: %v", err)
	}

	body := []byte(`{"status":"settled"}`)
	if err := store.Update(ctx, "key-1", body, time.Minute); err != nil {
		t.Fatalf("Update: %v", err)
	}

	exists, existing, err := store.CheckAndSet(ctx, "key-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("CheckAndSet after Update: %v", err)
	}
	if !exists || string(existing) != string(body) {
		t.Fatalf("replay after Update = (%v, %q), want stored body", exists, existing)
	}
}
