package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/tiemmay/api/internal/platform/auth"
	"github.com/tiemmay/api/internal/platform/httpx"
)

// simpleRateLimiter counts requests per caller in a fixed window. State
// lives in process memory, which is enough to blunt accidental retry
// loops on the write endpoints.
type simpleRateLimiter struct {
	limit  int
	window time.Duration
	clock  func() time.Time

	mu      sync.Mutex
	buckets map[string]*rateBucket
}

type rateBucket struct {
	count   int
	resetAt time.Time
}

func newSimpleRateLimiter(limit int, window time.Duration) *simpleRateLimiter {
	return &simpleRateLimiter{
		limit:   limit,
		window:  window,
		clock:   time.Now,
		buckets: make(map[string]*rateBucket),
	}
}

func (l *simpleRateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	bucket, ok := l.buckets[key]
	if !ok || now.After(bucket.resetAt) {
		l.buckets[key] = &rateBucket{count: 1, resetAt: now.Add(l.window)}
		return true
	}
	if bucket.count >= l.limit {
		return false
	}
	bucket.count++
	return true
}

// middleware keys the limiter by authenticated user, falling back to the
// remote address for unauthenticated callers.
func (l *simpleRateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if identity, ok := auth.IdentityFrom(r.Context()); ok {
			key = identity.UID
		}
		if !l.allow(key) {
			httpx.WriteError(w, r, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
