package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/anatomyace/anatomy-ace/internal/config"
	"github.com/anatomyace/anatomy-ace/internal/response"
)

// Limiter decides whether one more request from key fits the budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit rejects requests over the limiter's budget, keyed by client IP.
// Limiter errors fail open.
func RateLimit(limiter Limiter, log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "rate_limit").Logger()

	return func(c *gin.Context) {
		ok, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Warn().Err(err).Msg("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if !ok {
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

// ─── In-memory token bucket ────────────────────────────────────────

// MemoryLimiter implements a simple per-key token bucket.
type MemoryLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // Tokens per interval
	interval time.Duration // Refill interval
	now      func() time.Time
}

type visitor struct {
	tokens   int
	lastSeen time.Time
}

// NewMemoryLimiter creates a MemoryLimiter (e.g., 60 requests per minute).
func NewMemoryLimiter(rate int, interval time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		interval: interval,
		now:      time.Now,
	}
}

// RunCleanup evicts idle visitors until ctx is done.
func (rl *MemoryLimiter) RunCleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[key]
	if !exists {
		v = &visitor{tokens: rl.rate, lastSeen: now}
		rl.visitors[key] = v
	}

	// Refill whole intervals only.
	if periods := int(now.Sub(v.lastSeen) / rl.interval); periods > 0 {
		v.tokens += periods * rl.rate
		if v.tokens > rl.rate {
			v.tokens = rl.rate
		}
		v.lastSeen = now
	}

	if v.tokens <= 0 {
		return false, nil
	}
	v.tokens--
	return true, nil
}

func (rl *MemoryLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > 3*rl.interval {
			delete(rl.visitors, ip)
		}
	}
}

// ─── Redis fixed window ────────────────────────────────────────────

// RedisLimiter counts requests per fixed window in Redis so the budget is
// shared by every server instance.
type RedisLimiter struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
}

// NewRedisLimiter creates a RedisLimiter allowing limit requests per window.
func NewRedisLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, limit: int64(limit), window: window}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	slot := time.Now().UnixNano() / int64(rl.window)
	redisKey := config.CacheKey.ScoreRateKey(key, slot)

	pipe := rl.rdb.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= rl.limit, nil
}
