// Package limiter provides fixed-window request counting used to throttle
// login attempts. Counters live in Redis when an address is configured and
// fall back to process memory otherwise.
package limiter

import (
	"context"
	"sync"
	"time"

	"quill/logger"

	"github.com/redis/go-redis/v9"
)

var (
	client *redis.Client
	ctx    = context.Background()

	fallbackMu    sync.Mutex
	fallbackStore = make(map[string]*fallbackEntry)
)

type fallbackEntry struct {
	count   int64
	resetAt time.Time
}

// Init connects to Redis when addr is non-empty. A failed ping downgrades
// to the in-memory store rather than failing startup.
func Init(addr, password string, db int) {
	if addr == "" {
		client = nil
		return
	}
	c := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx).Err(); err != nil {
		logger.Warning("redis unavailable, using in-memory limiter:", err)
		_ = c.Close()
		client = nil
		return
	}
	client = c
}

// Allow increments the counter for key and reports whether it is still at
// or below limit within the current window.
func Allow(key string, limit int64, window time.Duration) bool {
	if client != nil {
		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			logger.Warning("limiter incr failed:", err)
			return true
		}
		if count == 1 {
			client.Expire(ctx, key, window)
		}
		return count <= limit
	}

	fallbackMu.Lock()
	defer fallbackMu.Unlock()

	now := time.Now()
	entry, ok := fallbackStore[key]
	if !ok || now.After(entry.resetAt) {
		fallbackStore[key] = &fallbackEntry{count: 1, resetAt: now.Add(window)}
		return true
	}
	entry.count++
	return entry.count <= limit
}

// Reset clears the counter for key.
func Reset(key string) {
	if client != nil {
		client.Del(ctx, key)
		return
	}
	fallbackMu.Lock()
	defer fallbackMu.Unlock()
	delete(fallbackStore, key)
}

// Sweep drops expired in-memory windows. Redis expires keys on its own.
func Sweep() {
	fallbackMu.Lock()
	defer fallbackMu.Unlock()

	now := time.Now()
	for key, entry := range fallbackStore {
		if now.After(entry.resetAt) {
			delete(fallbackStore, key)
		}
	}
}

// Close releases the Redis connection if one was established.
func Close() error {
	if client != nil {
		err := client.Close()
		client = nil
		return err
	}
	return nil
}
