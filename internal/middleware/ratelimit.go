package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Lohit-Behera/canva/internal/api"
)

// RateLimiter hands out a token bucket per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	ttl     time.Duration
	clients map[string]*client
	now     func() time.Time
}

type client struct {
	lim  *rate.Limiter
	seen time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		ttl:     10 * time.Minute,
		clients: make(map[string]*client),
		now:     time.Now,
	}
}

// Allow reports whether the client at key may make another request.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, ok := l.clients[key]
	if !ok {
		c = &client{lim: rate.NewLimiter(l.rps, l.burst)}
		l.clients[key] = c
	}
	c.seen = now
	l.evict(now)
	return c.lim.AllowN(now, 1)
}

// evict drops idle clients; caller holds mu.
func (l *RateLimiter) evict(now time.Time) {
	for k, c := range l.clients {
		if now.Sub(c.seen) > l.ttl {
			delete(l.clients, k)
		}
	}
}

// Middleware rejects requests over the limit with 429.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if host, _, err := net.SplitHostPort(key); err == nil {
			key = host
		}
		if !l.Allow(key) {
			w.Header().Set("Retry-After", "1")
			api.WriteJSON(w, http.StatusTooManyRequests, nil, "Too many requests, please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
