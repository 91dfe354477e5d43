package http

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// UserRateLimiter hands out one token bucket per user. Buckets idle for
// longer than ttl are dropped on the next sweep.
type UserRateLimiter struct {
	limit rate.Limit
	burst int
	ttl   time.Duration

	mu        sync.Mutex
	users     map[uuid.UUID]*userBucket
	lastSweep time.Time
}

type userBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewUserRateLimiter allows perMinute exports per user with the given burst.
func NewUserRateLimiter(perMinute float64, burst int) *UserRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &UserRateLimiter{
		limit: rate.Limit(perMinute / 60),
		burst: burst,
		ttl:   10 * time.Minute,
		users: make(map[uuid.UUID]*userBucket),
	}
}

// Allow reports whether uid may proceed now, and if not how long to wait.
func (l *UserRateLimiter) Allow(uid uuid.UUID) (bool, time.Duration) {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.ttl {
		for id, b := range l.users {
			if now.Sub(b.lastSeen) > l.ttl {
				delete(l.users, id)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.users[uid]
	if !ok {
		b = &userBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.users[uid] = b
	}
	b.lastSeen = now

	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, d
	}
	return true, 0
}

// Middleware answers 429 with Retry-After once a user exhausts its bucket.
// It must run after RequireUser.
func (l *UserRateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, wait := l.Allow(userID(c))
		if ok {
			return c.Next()
		}
		secs := int(wait.Seconds() + 0.999)
		if secs < 1 {
			secs = 1
		}
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(secs))
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many exports, slow down"})
	}
}
