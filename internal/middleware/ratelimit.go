package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateStore counts hits per key within a window. The storage is injected so a
// multi-instance deployment can swap the in-memory map for an external cache
// without touching the middleware.
type RateStore interface {
	// Hit records one hit for key and returns the count inside the window.
	Hit(key string, window time.Duration) int
}

// MemoryRateStore is a process-local RateStore. Counts reset when the window
// elapses and are not durable across restarts.
type MemoryRateStore struct {
	mu      sync.Mutex
	buckets map[string]*rateBucket
	nowFunc func() time.Time
}

type rateBucket struct {
	count   int
	started time.Time
}

func NewMemoryRateStore() *MemoryRateStore {
	return &MemoryRateStore{
		buckets: make(map[string]*rateBucket),
		nowFunc: time.Now,
	}
}

func (s *MemoryRateStore) Hit(key string, window time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	b, ok := s.buckets[key]
	if !ok || now.Sub(b.started) >= window {
		s.buckets[key] = &rateBucket{count: 1, started: now}
		return 1
	}
	b.count++
	return b.count
}

// RateLimit rejects a client IP after limit hits within window.
func RateLimit(store RateStore, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store.Hit(c.ClientIP(), window) > limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
