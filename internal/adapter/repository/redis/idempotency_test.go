package redis

import (
	"context"
	"testing"
	"time"

	"github.com/nomadhomes/bookingledger/internal/usecase"
)

var _ usecase.IdempotencyStore = (*IdempotencyStore)(nil)

func TestIdempotencyStore_CheckAndSetExisting(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if err := client.Set(ctx, store.prefix+"key", "cached", time.Minute).Err(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	exists, resp, err := store.CheckAndSet(ctx, "key", nil, time.Minute)
	if err != nil {
		t.Fatalf("CheckAndSet failed: %v", err)
	}

	if !exists || string(resp) != "cached" {
		t.Fatalf("expected existing cached response, got exists=%v resp=%s", exists, resp)
	}
}

func TestIdempotencyStore_CheckAndSetLocksNewKey(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	exists, resp, err := store.CheckAndSet(ctx, "pending", nil, time.Minute)
	if err != nil || exists || resp != nil {
		t.Fatalf("unexpected result: exists=%v resp=%v err=%v", exists, resp, err)
	}

	val, err := client.Get(ctx, store.prefix+"pending").Result()
	if err != nil || val != usecase.IdempotencyPending {
		t.Fatalf("expected placeholder lock, got val=%s err=%v", val, err)
	}

	exists, resp, err = store.CheckAndSet(ctx, "pending", nil, time.Minute)
	if err != nil || !exists || string(resp) != usecase.IdempotencyPending {
		t.Fatalf("expected second claim to see the pending marker, got exists=%v resp=%s err=%v", exists, resp, err)
	}
}

func TestIdempotencyStore_Update(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if _, _, err := store.CheckAndSet(ctx, "key", nil, time.Minute); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	if err := store.Update(ctx, "key", []byte(`{"status":201}`), time.Hour); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	exists, resp, err := store.CheckAndSet(ctx, "key", nil, time.Minute)
	if err != nil || !exists || string(resp) != `{"status":201}` {
		t.Fatalf("expected stored response, got exists=%v resp=%s err=%v", exists, resp, err)
	}

	if ttl := mr.TTL(store.prefix + "key"); ttl != time.Hour {
		t.Fatalf("expected update to refresh ttl, got %s", ttl)
	}
}

func TestIdempotencyStore_Release(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if _, _, err := store.CheckAndSet(ctx, "key", nil, time.Minute); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	if err := store.Release(ctx, "key"); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	exists, _, err := store.CheckAndSet(ctx, "key", nil, time.Minute)
	if err != nil || exists {
		t.Fatalf("expected released key to be claimable again, got exists=%v err=%v", exists, err)
	}
}
