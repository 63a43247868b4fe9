package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"tictac_arena/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// Counter counts hits on key inside a fixed window and returns the count so
// far, this hit included.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// KeyFunc names the subject a request is counted against. ok=false aborts
// the request with 401.
type KeyFunc func(c *gin.Context) (subject string, ok bool)

// ByIP counts per client address.
func ByIP(c *gin.Context) (string, bool) {
	return c.ClientIP(), true
}

// ByUser counts per authenticated user. JWT must run first.
func ByUser(c *gin.Context) (string, bool) {
	id, ok := UserID(c)
	if !ok {
		return "", false
	}
	return "u" + strconv.FormatInt(id, 10), true
}

type RateLimiter struct {
	counter Counter
	log     *slog.Logger
}

// NewRateLimiter counts in Redis when rdb is set, otherwise in process memory
// (per instance only).
func NewRateLimiter(rdb *redis.Client, log *slog.Logger) *RateLimiter {
	if log == nil {
		log = logger.With("component", "ratelimit")
	}
	var counter Counter = newMemoryCounter(time.Now)
	if rdb != nil {
		counter = redisCounter{rdb: rdb}
	}
	return &RateLimiter{counter: counter, log: log}
}

func NewRateLimiterWithCounter(counter Counter, log *slog.Logger) *RateLimiter {
	if log == nil {
		log = logger.Nop()
	}
	return &RateLimiter{counter: counter, log: log}
}

// Limit allows max requests per window for each subject returned by key.
// Counter errors let the request through.
func (l *RateLimiter) Limit(name string, max int, window time.Duration, key KeyFunc) gin.HandlerFunc {
	prefix := "rl:" + name + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":"

	return func(c *gin.Context) {
		if max <= 0 {
			c.Next()
			return
		}
		subject, ok := key(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		val, err := l.counter.Hit(c.Request.Context(), prefix+subject, window)
		if err != nil {
			l.log.Warn("rate limiter unavailable", "limiter", name, "error", err)
			c.Header("X-RateLimit-Error", "counter-error")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max64(0, int64(max)-val), 10))

		if val > int64(max) {
			RLBlocked.WithLabelValues(name).Inc()
			l.log.Debug("rate limited", "limiter", name, "subject", subject, "count", val)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues(name).Inc()
		c.Next()
	}
}

type windowCount struct {
	start  time.Time
	length time.Duration
	count  int64
}

type memoryCounter struct {
	mu      sync.Mutex
	now     func() time.Time
	windows map[string]*windowCount
}

func newMemoryCounter(now func() time.Time) *memoryCounter {
	return &memoryCounter{now: now, windows: make(map[string]*windowCount)}
}

func (m *memoryCounter) Hit(_ context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || now.Sub(w.start) >= window {
		m.sweep(now)
		m.windows[key] = &windowCount{start: now, length: window, count: 1}
		return 1, nil
	}
	w.count++
	return w.count, nil
}

// sweep drops expired windows so idle subjects do not pile up.
func (m *memoryCounter) sweep(now time.Time) {
	for k, w := range m.windows {
		if now.Sub(w.start) >= w.length {
			delete(m.windows, k)
		}
	}
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
