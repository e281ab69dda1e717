package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// setupTestRedis connects to a local Redis, skipping when none is running.
// The client integration tests cover Redis through testcontainers-go.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use a separate DB for tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func testKey() CacheKey {
	return CacheKey{Endpoint: "/probability/depth", Items: []string{"fsid:390655"}}
}

func testEntry(ttl time.Duration) *CacheEntry {
	return &CacheEntry{
		Data:       []byte(`[{"fsid": 390655}]`),
		Expires:    time.Now().Add(ttl),
		StatusCode: 200,
		CachedAt:   time.Now(),
	}
}

func TestManager_Memory_SetAndGet(t *testing.T) {
	manager := NewManager(nil, time.Minute)
	ctx := context.Background()

	entry := testEntry(5 * time.Minute)
	if err := manager.Set(ctx, testKey(), entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	retrieved, err := manager.Get(ctx, testKey())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(retrieved.Data) != string(entry.Data) {
		t.Errorf("Data mismatch: got %s, want %s", retrieved.Data, entry.Data)
	}
}

func TestManager_Memory_CacheMiss(t *testing.T) {
	manager := NewManager(nil, time.Minute)

	_, err := manager.Get(context.Background(), testKey())
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestManager_Memory_ExpiredEntry(t *testing.T) {
	manager := NewManager(nil, time.Minute)
	ctx := context.Background()

	if err := manager.Set(ctx, testKey(), testEntry(-time.Hour)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	_, err := manager.Get(ctx, testKey())
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss for expired entry, got %v", err)
	}
}

func TestManager_Memory_Disabled(t *testing.T) {
	manager := NewManager(nil, 0)
	ctx := context.Background()

	if err := manager.Set(ctx, testKey(), testEntry(time.Hour)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	_, err := manager.Get(ctx, testKey())
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss with no layers, got %v", err)
	}
}

func TestManager_Memory_DeleteAndFlush(t *testing.T) {
	manager := NewManager(nil, time.Minute)
	ctx := context.Background()

	if err := manager.Set(ctx, testKey(), testEntry(time.Hour)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := manager.Delete(ctx, testKey()); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := manager.Get(ctx, testKey()); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after Delete, got %v", err)
	}

	if err := manager.Set(ctx, testKey(), testEntry(time.Hour)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	manager.Flush()
	if _, err := manager.Get(ctx, testKey()); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after Flush, got %v", err)
	}
}

func TestManager_Set_NilEntry(t *testing.T) {
	manager := NewManager(nil, time.Minute)

	if err := manager.Set(context.Background(), testKey(), nil); err == nil {
		t.Error("Set with nil entry should return error")
	}
}

func TestManager_Redis_SetAndGet(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client, time.Minute)
	ctx := context.Background()

	entry := testEntry(5 * time.Minute)
	if err := manager.Set(ctx, testKey(), entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// A second manager shares only the Redis layer.
	other := NewManager(client, time.Minute)
	retrieved, err := other.Get(ctx, testKey())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(retrieved.Data) != string(entry.Data) {
		t.Errorf("Data mismatch: got %s, want %s", retrieved.Data, entry.Data)
	}
	if retrieved.StatusCode != entry.StatusCode {
		t.Errorf("StatusCode mismatch: got %d, want %d", retrieved.StatusCode, entry.StatusCode)
	}

	ttl, err := client.TTL(ctx, testKey().String()).Result()
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl <= 0 || ttl > 5*time.Minute {
		t.Errorf("Redis TTL = %v, want (0, 5m]", ttl)
	}
}

func TestManager_Redis_Delete(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client, time.Minute)
	ctx := context.Background()

	if err := manager.Set(ctx, testKey(), testEntry(5*time.Minute)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := manager.Delete(ctx, testKey()); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := manager.Get(ctx, testKey())
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after Delete, got %v", err)
	}
}

func TestManager_Redis_InvalidEntry(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client, 0)
	ctx := context.Background()

	if err := client.Set(ctx, testKey().String(), "not json", time.Minute).Err(); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	_, err := manager.Get(ctx, testKey())
	if !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("Expected ErrInvalidEntry, got %v", err)
	}
}
