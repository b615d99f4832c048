package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/http/response"
	"golang.org/x/time/rate"
)

// IPThrottle is a coarse in-process token bucket per client IP in front of
// every route. Per-action budgets are enforced by the identity service.
type IPThrottle struct {
	limit   rate.Limit
	burst   int
	idle    time.Duration
	mu      sync.Mutex
	clients map[string]*clientBucket
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPThrottle creates a throttle for requestsPerMinute. A non-positive
// budget disables it.
func NewIPThrottle(requestsPerMinute int) *IPThrottle {
	if requestsPerMinute <= 0 {
		return nil
	}
	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}
	return &IPThrottle{
		limit:   rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:   burst,
		idle:    5 * time.Minute,
		clients: make(map[string]*clientBucket),
	}
}

// Handler returns the gin middleware
func (t *IPThrottle) Handler() gin.HandlerFunc {
	if t == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		limiter := t.bucket(c.ClientIP())
		if !limiter.Allow() {
			limited := domain.NewError(domain.CodeRateLimited, domain.ErrTooManyRequests.Message, nil)
			limited.RetryAfter = time.Duration(float64(time.Second) / float64(t.limit))
			response.Error(c, nil, limited)
			return
		}
		c.Next()
	}
}

func (t *IPThrottle) bucket(key string) *rate.Limiter {
	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry, ok := t.clients[key]; ok {
		entry.lastSeen = now
		return entry.limiter
	}

	limiter := rate.NewLimiter(t.limit, t.burst)
	t.clients[key] = &clientBucket{limiter: limiter, lastSeen: now}
	t.evictLocked(now)
	return limiter
}

func (t *IPThrottle) evictLocked(now time.Time) {
	for key, entry := range t.clients {
		if now.Sub(entry.lastSeen) > t.idle {
			delete(t.clients, key)
		}
	}
}
