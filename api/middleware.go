package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/Domenick1991/airtickets/internal/logger"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL    = 10 * time.Minute
	limiterSweepEvery = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiters holds a token bucket per client IP. Buckets idle longer than ttl
// are dropped on the next sweep; ttl is never shorter than a full refill so
// eviction cannot hand out extra tokens.
type ipLimiters struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newIPLimiters(perSec float64, burst int, now func() time.Time) *ipLimiters {
	ttl := limiterIdleTTL
	if perSec > 0 {
		if refill := time.Duration(float64(burst) / perSec * float64(time.Second)); refill > ttl {
			ttl = refill
		}
	}
	return &ipLimiters{
		visitors:  make(map[string]*visitor),
		limit:     rate.Limit(perSec),
		burst:     burst,
		ttl:       ttl,
		lastSweep: now(),
		now:       now,
	}
}

func (l *ipLimiters) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= limiterSweepEvery {
		l.sweep(now)
	}
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (l *ipLimiters) sweep(now time.Time) {
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.ttl {
			delete(l.visitors, ip)
		}
	}
	l.lastSweep = now
}

func (l *ipLimiters) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// RateLimit keeps one token bucket per client IP.
func RateLimit(perSec float64, burst int, log *logger.Logger) gin.HandlerFunc {
	if burst < 1 {
		burst = 1
	}
	limiters := newIPLimiters(perSec, burst, time.Now)

	return func(c *gin.Context) {
		if !limiters.allow(c.ClientIP()) {
			log.Warn("rate limit exceeded", "ip", c.ClientIP(), "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": "1s",
			})
			return
		}
		c.Next()
	}
}

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("request failed", append(args, "error", c.Errors.String())...)
		case status >= http.StatusBadRequest:
			log.Warn("client error", args...)
		default:
			log.Info("request", args...)
		}
	}
}

func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered", "panic", recovered, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	})
}
