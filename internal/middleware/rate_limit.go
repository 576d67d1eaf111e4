package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// RateScope names an independent request budget
type RateScope string

const (
	// ScopeAPI covers ordinary reads and writes
	ScopeAPI RateScope = "api"
	// ScopeAlertCheck covers on-demand alert evaluation, which loads every budget and goal of the user
	ScopeAlertCheck RateScope = "alert_check"
)

func (s RateScope) describe() string {
	if s == ScopeAlertCheck {
		return "alert check"
	}
	return "API"
}

// Limit is a token bucket refilled at PerMinute with room for Burst requests
type Limit struct {
	PerMinute int
	Burst     int
}

func (l Limit) perSecond() rate.Limit {
	return rate.Limit(float64(l.PerMinute) / 60)
}

const (
	sweepInterval = 5 * time.Minute
	idleTTL       = 10 * time.Minute
)

// bucketKey identifies one caller within one scope. API tokens get their own
// bucket so a busy automation cannot starve the owner's browser session.
type bucketKey struct {
	scope  RateScope
	caller string
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps per-caller token buckets for each configured scope
type RateLimiter struct {
	mu       sync.Mutex
	limits   map[RateScope]Limit
	buckets  map[bucketKey]*bucket
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a limiter for the given scopes and starts its idle-bucket sweeper.
// Requests in a scope without a limit are never throttled.
func NewRateLimiter(limits map[RateScope]Limit) *RateLimiter {
	rl := newRateLimiter(limits, time.Now)
	go rl.sweep(sweepInterval)
	return rl
}

func newRateLimiter(limits map[RateScope]Limit, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		limits:  limits,
		buckets: make(map[bucketKey]*bucket),
		now:     now,
		stopCh:  make(chan struct{}),
	}
}

// quota is the outcome of taking one request from a bucket
type quota struct {
	allowed    bool
	limit      Limit
	remaining  int
	reset      time.Time
	retryAfter time.Duration
}

func (r *RateLimiter) take(scope RateScope, caller string) (quota, bool) {
	limit, ok := r.limits[scope]
	if !ok {
		return quota{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	key := bucketKey{scope: scope, caller: caller}
	b, exists := r.buckets[key]
	if !exists {
		b = &bucket{limiter: rate.NewLimiter(limit.perSecond(), limit.Burst)}
		r.buckets[key] = b
	}
	b.lastSeen = now

	q := quota{limit: limit, allowed: b.limiter.AllowN(now, 1)}
	tokens := b.limiter.TokensAt(now)
	q.remaining = max(int(tokens), 0)
	refill := float64(limit.perSecond())
	q.reset = now.Add(time.Duration((float64(limit.Burst) - tokens) / refill * float64(time.Second)))
	if !q.allowed {
		q.retryAfter = time.Duration((1 - tokens) / refill * float64(time.Second))
	}
	return q, true
}

func (r *RateLimiter) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.evictIdle()
		case <-r.stopCh:
			return
		}
	}
}

func (r *RateLimiter) evictIdle() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	evicted := 0
	for key, b := range r.buckets {
		if now.Sub(b.lastSeen) > idleTTL {
			delete(r.buckets, key)
			evicted++
		}
	}
	if evicted > 0 {
		log.Debug().Int("evicted", evicted).Int("remaining", len(r.buckets)).Msg("Evicted idle rate limit buckets")
	}
	return evicted
}

// Stop stops the sweeper; safe to call more than once
func (r *RateLimiter) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// callerKey identifies the authenticated caller: the API token when present, otherwise the user
func callerKey(c echo.Context) (string, bool) {
	if IsAPITokenAuth(c) {
		if id := GetAPITokenID(c); id != uuid.Nil {
			return "token:" + id.String(), true
		}
	}
	if id := GetUserID(c); id != uuid.Nil {
		return "user:" + id.String(), true
	}
	return "", false
}

// Middleware throttles authenticated requests within scope and reports the
// remaining budget in X-RateLimit-* headers. It must run after authentication.
func (r *RateLimiter) Middleware(scope RateScope) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, ok := callerKey(c)
			if !ok {
				return next(c)
			}
			q, limited := r.take(scope, caller)
			if !limited {
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(q.limit.PerMinute))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(q.remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(q.reset.Unix(), 10))

			if !q.allowed {
				log.Warn().
					Str("scope", string(scope)).
					Str("caller", caller).
					Dur("retry_after", q.retryAfter).
					Msg("Rate limit exceeded")
				return rateLimitedError(c, scope, q.retryAfter)
			}
			return next(c)
		}
	}
}
